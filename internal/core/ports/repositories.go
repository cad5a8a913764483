package ports

import (
	"context"
	"errors"

	"fintel-wallet-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when a debit would drive a balance below
	// zero. The balance is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLockNotAvailable occurs when a wallet lock could not be acquired
	// within the bounded wait. The atomic unit must be aborted.
	ErrLockNotAvailable = errors.New("wallet lock not available")

	// ErrWalletNotFound occurs when a wallet id does not resolve.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrDuplicateReference occurs when a transfer reference already exists.
	ErrDuplicateReference = errors.New("duplicate transfer reference")
)

// Tx is one atomic unit: a group of mutations that commit or roll back
// together, with no partially visible intermediate state. Wallet locks
// acquired inside the unit are held until Commit or Rollback.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transactor opens atomic units against the backing store.
type Transactor interface {
	Begin(ctx context.Context) (Tx, error)
}

// WalletStore owns balance rows and exposes the locked read-modify-write
// primitives. Balance mutation happens only through ApplyDelta under a lock
// acquired with LockFor; nothing outside a unit reads an uncommitted balance.
type WalletStore interface {
	// GetOrCreate returns the owner's wallet, creating it with a zero
	// balance on first reference.
	GetOrCreate(ctx context.Context, ownerID int64) (*domain.Wallet, error)

	// GetByOwner returns the owner's wallet, or nil when none exists yet.
	GetByOwner(ctx context.Context, ownerID int64) (*domain.Wallet, error)

	// GetByID returns a wallet by id, or nil when absent.
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)

	// LockFor acquires the exclusive per-wallet lock for the duration of tx
	// and returns the wallet as of lock acquisition. The wait is bounded:
	// expiry surfaces ErrLockNotAvailable.
	LockFor(ctx context.Context, tx Tx, walletID int64) (*domain.Wallet, error)

	// ApplyDelta mutates the locked wallet's balance by amount in the given
	// direction. A debit that would go negative fails with
	// ErrInsufficientFunds and changes nothing. Every successful mutation
	// stamps a fresh version and update time.
	ApplyDelta(ctx context.Context, tx Tx, walletID int64, amount decimal.Decimal, direction domain.Direction) (*domain.Wallet, error)

	// Deactivate marks a wallet inactive. Wallets are never deleted.
	Deactivate(ctx context.Context, walletID int64) error
}

// LedgerJournal owns the append-only record of entries per wallet.
type LedgerJournal interface {
	// Append writes the batch as part of the caller's atomic unit;
	// it never partially writes.
	Append(ctx context.Context, tx Tx, entries []domain.LedgerEntry) error

	// History returns entries for a wallet ordered by creation time
	// descending. limit caps the page size, offset is a zero-based skip;
	// an offset past the end yields an empty slice, not an error.
	History(ctx context.Context, walletID int64, limit, offset int32) ([]domain.LedgerEntry, error)
}

// TransferStore owns transfer lifecycle records.
type TransferStore interface {
	// Create persists a transfer inside the caller's atomic unit.
	Create(ctx context.Context, tx Tx, transfer *domain.Transfer) error

	// GetByReference returns the transfer with the given reference,
	// or nil when unknown.
	GetByReference(ctx context.Context, reference string) (*domain.Transfer, error)

	// RecordFailed persists a terminal failed transfer outside any unit.
	// Failed transfers carry no ledger entries and no balance change.
	RecordFailed(ctx context.Context, transfer *domain.Transfer) error
}

// OwnerDirectory maps phone numbers to wallet owners.
type OwnerDirectory interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Owner, error)
	GetByID(ctx context.Context, id int64) (*domain.Owner, error)
}
