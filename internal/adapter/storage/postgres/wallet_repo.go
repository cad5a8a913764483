package postgres

import (
	"context"
	"errors"
	"fmt"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// SQLSTATE raised when lock_timeout expires while waiting on FOR UPDATE.
const lockNotAvailableCode = "55P03"

const walletColumns = `id, owner_id, balance, currency, version, active, created_at, updated_at`

// WalletRepo implements ports.WalletStore.
type WalletRepo struct {
	pool     Pool
	currency string
}

// NewWalletRepo creates a WalletRepo. currency is stamped on wallets created
// lazily by GetOrCreate.
func NewWalletRepo(pool Pool, currency string) *WalletRepo {
	return &WalletRepo{pool: pool, currency: currency}
}

// GetOrCreate returns the owner's wallet, creating it with a zero balance on
// first reference. The upsert makes concurrent first references converge on
// one row.
func (r *WalletRepo) GetOrCreate(ctx context.Context, ownerID int64) (*domain.Wallet, error) {
	w, err := r.GetByOwner(ctx, ownerID)
	if err != nil || w != nil {
		return w, err
	}

	query := `INSERT INTO wallets (owner_id, balance, currency, version, active, created_at, updated_at)
		VALUES ($1, 0, $2, 1, TRUE, NOW(), NOW())
		ON CONFLICT (owner_id) DO UPDATE SET updated_at = wallets.updated_at
		RETURNING ` + walletColumns

	w = &domain.Wallet{}
	err = r.pool.QueryRow(ctx, query, ownerID, r.currency).Scan(
		&w.ID, &w.OwnerID, &w.Balance, &w.Currency,
		&w.Version, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return w, nil
}

// GetByOwner fetches the owner's wallet without locking.
func (r *WalletRepo) GetByOwner(ctx context.Context, ownerID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&w.ID, &w.OwnerID, &w.Balance, &w.Currency,
		&w.Version, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by owner: %w", err)
	}
	return w, nil
}

// GetByID fetches a wallet by id without locking.
func (r *WalletRepo) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.OwnerID, &w.Balance, &w.Currency,
		&w.Version, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// LockFor acquires the row lock for walletID inside tx and returns the wallet
// as of acquisition. The transaction's lock_timeout bounds the wait; expiry
// surfaces ports.ErrLockNotAvailable.
func (r *WalletRepo) LockFor(ctx context.Context, tx ports.Tx, walletID int64) (*domain.Wallet, error) {
	pt, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err = pt.QueryRow(ctx, query, walletID).Scan(
		&w.ID, &w.OwnerID, &w.Balance, &w.Currency,
		&w.Version, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrWalletNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailableCode {
			return nil, ports.ErrLockNotAvailable
		}
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return w, nil
}

// ApplyDelta mutates the locked wallet's balance inside tx. The debit query
// carries the non-negative guard in its WHERE clause, so even a bug that
// skipped the locked precheck could not drive a balance below zero.
func (r *WalletRepo) ApplyDelta(ctx context.Context, tx ports.Tx, walletID int64, amount decimal.Decimal, direction domain.Direction) (*domain.Wallet, error) {
	pt, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	var query string
	if direction == domain.DirectionDebit {
		query = `UPDATE wallets
			SET balance = balance - $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND balance >= $2
			RETURNING ` + walletColumns
	} else {
		query = `UPDATE wallets
			SET balance = balance + $2, version = version + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING ` + walletColumns
	}

	w := &domain.Wallet{}
	err = pt.QueryRow(ctx, query, walletID, amount).Scan(
		&w.ID, &w.OwnerID, &w.Balance, &w.Currency,
		&w.Version, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The caller holds the row lock, so a missing row here means the
			// debit guard rejected the update, not that the wallet vanished.
			if direction == domain.DirectionDebit {
				return nil, ports.ErrInsufficientFunds
			}
			return nil, ports.ErrWalletNotFound
		}
		return nil, fmt.Errorf("apply %s delta: %w", direction, err)
	}
	return w, nil
}

// Deactivate marks a wallet inactive.
func (r *WalletRepo) Deactivate(ctx context.Context, walletID int64) error {
	query := `UPDATE wallets SET active = FALSE, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, walletID)
	if err != nil {
		return fmt.Errorf("deactivate wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrWalletNotFound
	}
	return nil
}
