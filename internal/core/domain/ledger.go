package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryStatusCompleted EntryStatus = "COMPLETED"
	EntryStatusFailed    EntryStatus = "FAILED"
)

// LedgerEntry is an immutable debit or credit record tied to a transfer
// reference. Corrections are new compensating entries, never edits.
// CounterpartWalletID is nil for pure deposits and withdrawals.
type LedgerEntry struct {
	ID                  int64           `json:"id"`
	WalletID            int64           `json:"wallet_id"`
	Direction           Direction       `json:"direction"`
	Amount              decimal.Decimal `json:"amount"` // always positive
	CounterpartWalletID *int64          `json:"counterpart_wallet_id,omitempty"`
	Reference           string          `json:"reference"`
	Description         string          `json:"description,omitempty"`
	Status              EntryStatus     `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}

// SignedAmount returns the entry's effect on its wallet's balance:
// negative for debits, positive for credits.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// NewTransferEntries builds the balanced debit/credit pair for a completed
// transfer. Both entries carry the transfer reference and point at each
// other's wallet, so their signed amounts always sum to zero.
func NewTransferEntries(reference string, senderWalletID, recipientWalletID int64, amount decimal.Decimal, now time.Time) []LedgerEntry {
	sender := senderWalletID
	recipient := recipientWalletID
	return []LedgerEntry{
		{
			WalletID:            sender,
			Direction:           DirectionDebit,
			Amount:              amount,
			CounterpartWalletID: &recipient,
			Reference:           reference,
			Status:              EntryStatusCompleted,
			CreatedAt:           now,
		},
		{
			WalletID:            recipient,
			Direction:           DirectionCredit,
			Amount:              amount,
			CounterpartWalletID: &sender,
			Reference:           reference,
			Status:              EntryStatusCompleted,
			CreatedAt:           now,
		},
	}
}
