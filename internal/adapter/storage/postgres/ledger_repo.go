package postgres

import (
	"context"
	"fmt"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
)

const ledgerColumns = `id, wallet_id, direction, amount, counterpart_wallet_id, reference, description, status, created_at`

// LedgerRepo implements ports.LedgerJournal.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append writes the batch inside the caller's transaction. Entries are never
// updated or deleted afterwards; corrections are new compensating entries.
func (r *LedgerRepo) Append(ctx context.Context, tx ports.Tx, entries []domain.LedgerEntry) error {
	pt, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO ledger_entries
		(wallet_id, direction, amount, counterpart_wallet_id, reference, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, e := range entries {
		if _, err := pt.Exec(ctx, query,
			e.WalletID, e.Direction, e.Amount, e.CounterpartWalletID,
			e.Reference, e.Description, e.Status, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
	}
	return nil
}

// History returns the wallet's entries newest first. The id tiebreak keeps
// pages stable when entries share a creation timestamp.
func (r *LedgerRepo) History(ctx context.Context, walletID int64, limit, offset int32) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit)
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.WalletID, &e.Direction, &e.Amount, &e.CounterpartWalletID,
			&e.Reference, &e.Description, &e.Status, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
