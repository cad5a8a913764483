package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestWallet_CanDebit(t *testing.T) {
	w := &Wallet{Balance: dec("5000.00")}

	assert.True(t, w.CanDebit(dec("3000")))
	assert.True(t, w.CanDebit(dec("5000.00")), "balance may reach exactly zero")
	assert.False(t, w.CanDebit(dec("5000.01")))
}

func TestLedgerEntry_SignedAmount(t *testing.T) {
	debit := &LedgerEntry{Direction: DirectionDebit, Amount: dec("150.50")}
	credit := &LedgerEntry{Direction: DirectionCredit, Amount: dec("150.50")}

	assert.True(t, debit.SignedAmount().Equal(dec("-150.50")))
	assert.True(t, credit.SignedAmount().Equal(dec("150.50")))
}

func TestNewTransferEntries_Conservation(t *testing.T) {
	now := time.Now().UTC()
	entries := NewTransferEntries("TXN_AB12CD34EF56", 7, 9, dec("3000.00"), now)
	require.Len(t, entries, 2)

	debit, credit := entries[0], entries[1]

	assert.Equal(t, int64(7), debit.WalletID)
	assert.Equal(t, DirectionDebit, debit.Direction)
	require.NotNil(t, debit.CounterpartWalletID)
	assert.Equal(t, int64(9), *debit.CounterpartWalletID)

	assert.Equal(t, int64(9), credit.WalletID)
	assert.Equal(t, DirectionCredit, credit.Direction)
	require.NotNil(t, credit.CounterpartWalletID)
	assert.Equal(t, int64(7), *credit.CounterpartWalletID)

	// The pair conserves value.
	sum := debit.SignedAmount().Add(credit.SignedAmount())
	assert.True(t, sum.IsZero(), "debit + credit must sum to zero, got %s", sum)

	for _, e := range entries {
		assert.Equal(t, "TXN_AB12CD34EF56", e.Reference)
		assert.Equal(t, EntryStatusCompleted, e.Status)
		assert.Equal(t, now, e.CreatedAt)
		assert.True(t, e.Amount.IsPositive())
	}
}

func TestTransfer_IsTerminal(t *testing.T) {
	tests := []struct {
		status TransferStatus
		want   bool
	}{
		{TransferStatusPending, false},
		{TransferStatusCompleted, true},
		{TransferStatusFailed, true},
	}
	for _, tt := range tests {
		tr := &Transfer{Status: tt.status}
		assert.Equal(t, tt.want, tr.IsTerminal(), "status %s", tt.status)
	}
}
