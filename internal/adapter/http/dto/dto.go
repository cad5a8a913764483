package dto

import (
	"time"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"

	"github.com/shopspring/decimal"
)

// TransferRequest is the request body for a wallet-to-wallet transfer.
// The sender is taken from the authenticated token, never from the body.
// Reference is the caller's optional idempotency key.
type TransferRequest struct {
	RecipientPhone string          `json:"recipient_phone" binding:"required,phone"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Description    string          `json:"description,omitempty" binding:"max=140"`
	Reference      string          `json:"reference,omitempty" binding:"omitempty,max=64"`
}

// FundingRequest is the request body for a deposit or withdrawal.
type FundingRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description,omitempty" binding:"max=140"`
}

// TransferResponse is the response body for a resolved transfer.
type TransferResponse struct {
	Reference  string          `json:"reference"`
	Status     string          `json:"status"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Currency   string          `json:"currency"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// LedgerEntryResponse is one history line.
type LedgerEntryResponse struct {
	ID          int64           `json:"id"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// HistoryResponse wraps a page of ledger entries.
type HistoryResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Limit   int32                 `json:"limit"`
	Offset  int32                 `json:"offset"`
}

// ToTransferResponse maps a service result to the wire shape.
func ToTransferResponse(r *ports.TransferResult) TransferResponse {
	return TransferResponse{
		Reference:  r.Reference,
		Status:     string(r.Status),
		NewBalance: r.SenderBalance,
		Currency:   r.Currency,
	}
}

// ToHistoryResponse maps ledger entries to the wire shape.
func ToHistoryResponse(entries []domain.LedgerEntry, limit, offset int32) HistoryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:          e.ID,
			Direction:   string(e.Direction),
			Amount:      e.Amount,
			Reference:   e.Reference,
			Description: e.Description,
			Status:      string(e.Status),
			CreatedAt:   e.CreatedAt,
		})
	}
	return HistoryResponse{Entries: out, Limit: limit, Offset: offset}
}
