package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether a delta or ledger entry moves value out of or into
// a wallet.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Wallet is a balance-holding account belonging to one owner.
// Balance is exact fixed-point decimal and never goes below zero.
// Wallets are created lazily with a zero balance and are deactivated,
// never deleted.
type Wallet struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Version   int64           `json:"version"` // bumped on every balance mutation
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanDebit reports whether subtracting amount keeps the balance non-negative.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
