package postgres

import (
	"context"
	"errors"
	"fmt"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE for unique constraint violations.
const uniqueViolationCode = "23505"

const transferColumns = `id, reference, sender_wallet_id, recipient_wallet_id, amount, currency,
		status, description, failure_reason, sender_balance, created_at, completed_at`

// TransferRepo implements ports.TransferStore.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Create persists a transfer inside the caller's transaction. The unique
// index on reference turns a racing duplicate into ports.ErrDuplicateReference.
func (r *TransferRepo) Create(ctx context.Context, tx ports.Tx, transfer *domain.Transfer) error {
	pt, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO transfers
		(reference, sender_wallet_id, recipient_wallet_id, amount, currency,
		 status, description, failure_reason, sender_balance, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err = pt.QueryRow(ctx, query,
		transfer.Reference, transfer.SenderWalletID, transfer.RecipientWalletID,
		transfer.Amount, transfer.Currency, transfer.Status, transfer.Description,
		transfer.FailureReason, transfer.SenderBalance, transfer.CreatedAt, transfer.CompletedAt,
	).Scan(&transfer.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ports.ErrDuplicateReference
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByReference fetches a transfer by its reference, or nil when unknown.
func (r *TransferRepo) GetByReference(ctx context.Context, reference string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE reference = $1`

	t := &domain.Transfer{}
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&t.ID, &t.Reference, &t.SenderWalletID, &t.RecipientWalletID,
		&t.Amount, &t.Currency, &t.Status, &t.Description,
		&t.FailureReason, &t.SenderBalance, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer by reference: %w", err)
	}
	return t, nil
}

// RecordFailed persists a terminal failed transfer on the pool, outside any
// transaction, so the record survives the rollback that rejected the money
// movement.
func (r *TransferRepo) RecordFailed(ctx context.Context, transfer *domain.Transfer) error {
	query := `INSERT INTO transfers
		(reference, sender_wallet_id, recipient_wallet_id, amount, currency,
		 status, description, failure_reason, sender_balance, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (reference) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		transfer.Reference, transfer.SenderWalletID, transfer.RecipientWalletID,
		transfer.Amount, transfer.Currency, transfer.Status, transfer.Description,
		transfer.FailureReason, transfer.SenderBalance, transfer.CreatedAt, transfer.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("record failed transfer: %w", err)
	}
	return nil
}
