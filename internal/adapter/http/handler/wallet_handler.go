package handler

import (
	"strconv"

	"fintel-wallet-backend/internal/adapter/http/dto"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/pkg/apperror"
	"fintel-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles balance and history queries.
type WalletHandler struct {
	accountSvc ports.AccountService
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(accountSvc ports.AccountService) *WalletHandler {
	return &WalletHandler{accountSvc: accountSvc}
}

func formatOwnerID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetBalance handles GET /api/v1/wallet?phone=.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.Error(c, apperror.Validation("phone query parameter is required"))
		return
	}

	result, err := h.accountSvc.GetBalance(c.Request.Context(), phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance:  result.Balance,
		Currency: result.Currency,
	})
}

// GetHistory handles GET /api/v1/transactions/history?phone=&limit=&offset=.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.Error(c, apperror.Validation("phone query parameter is required"))
		return
	}

	limit, err := queryInt32(c, "limit", 0)
	if err != nil {
		response.Error(c, apperror.Validation("limit must be a number"))
		return
	}
	offset, err := queryInt32(c, "offset", 0)
	if err != nil {
		response.Error(c, apperror.Validation("offset must be a number"))
		return
	}

	entries, err := h.accountSvc.GetHistory(c.Request.Context(), phone, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToHistoryResponse(entries, limit, offset))
}

func queryInt32(c *gin.Context, name string, def int32) (int32, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
