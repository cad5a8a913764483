package handler

import (
	"fintel-wallet-backend/internal/adapter/http/dto"
	"fintel-wallet-backend/internal/adapter/http/middleware"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/pkg/apperror"
	"fintel-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles money movement endpoints.
type TransferHandler struct {
	transferSvc ports.TransferService
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc}
}

// senderRef pulls the authenticated caller's identity out of the context.
// The phone claim is preferred; the owner id covers tokens issued before
// the phone claim existed.
func senderRef(c *gin.Context) (string, bool) {
	if phone := c.GetString(middleware.CtxPhone); phone != "" {
		return phone, true
	}
	if id := c.GetInt64(middleware.CtxOwnerID); id != 0 {
		return formatOwnerID(id), true
	}
	return "", false
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	sender, ok := senderRef(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderRef:    sender,
		RecipientRef: req.RecipientPhone,
		Amount:       req.Amount,
		Description:  req.Description,
		Reference:    req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransferResponse(result))
}

// Deposit handles POST /api/v1/transfers/deposit.
func (h *TransferHandler) Deposit(c *gin.Context) {
	sender, ok := senderRef(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.FundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.transferSvc.Deposit(c.Request.Context(), ports.FundingRequest{
		OwnerRef:    sender,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransferResponse(result))
}

// Withdraw handles POST /api/v1/transfers/withdraw.
func (h *TransferHandler) Withdraw(c *gin.Context) {
	sender, ok := senderRef(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.FundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.transferSvc.Withdraw(c.Request.Context(), ports.FundingRequest{
		OwnerRef:    sender,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransferResponse(result))
}
