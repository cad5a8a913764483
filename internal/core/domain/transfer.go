package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer.
// pending resolves to exactly one of completed or failed; both are terminal.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// Transfer is a single logical value movement between two wallets,
// identified by a unique reference that doubles as the idempotency key.
type Transfer struct {
	ID                int64           `json:"id"`
	Reference         string          `json:"reference"`
	SenderWalletID    int64           `json:"sender_wallet_id"`
	RecipientWalletID int64           `json:"recipient_wallet_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            TransferStatus  `json:"status"`
	Description       string          `json:"description,omitempty"`
	FailureReason     string          `json:"failure_reason,omitempty"`
	SenderBalance     decimal.Decimal `json:"sender_balance"` // balance after resolution
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the transfer reached a final state.
func (t *Transfer) IsTerminal() bool {
	return t.Status == TransferStatusCompleted || t.Status == TransferStatusFailed
}
