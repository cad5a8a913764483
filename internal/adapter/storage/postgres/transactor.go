package postgres

import (
	"context"
	"fmt"
	"time"

	"fintel-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.Transactor on a pgx pool. Every unit it opens
// carries a session-local lock_timeout, so a FOR UPDATE that cannot acquire
// its row within the bound fails with SQLSTATE 55P03 instead of queueing
// forever behind a long-running transfer.
type Transactor struct {
	pool        Pool
	lockTimeout time.Duration
}

// NewTransactor creates a Transactor with the given bounded lock wait.
func NewTransactor(pool Pool, lockTimeout time.Duration) *Transactor {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &Transactor{pool: pool, lockTimeout: lockTimeout}
}

// Begin starts a database transaction with the lock timeout applied.
func (t *Transactor) Begin(ctx context.Context) (ports.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	// SET LOCAL does not accept bind parameters; the value is a trusted
	// config duration, never user input.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, stmt); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}
	return tx, nil
}

// pgxTx unwraps the ports.Tx handle back into the pgx transaction the
// repositories issue queries on.
func pgxTx(tx ports.Tx) (pgx.Tx, error) {
	t, ok := tx.(pgx.Tx)
	if !ok {
		return nil, fmt.Errorf("transaction handle is not a postgres transaction: %T", tx)
	}
	return t, nil
}
