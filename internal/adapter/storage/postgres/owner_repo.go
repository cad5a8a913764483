package postgres

import (
	"context"
	"errors"
	"fmt"

	"fintel-wallet-backend/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const ownerColumns = `id, phone_number, display_name, active, created_at`

// OwnerRepo implements ports.OwnerDirectory.
type OwnerRepo struct {
	pool Pool
}

// NewOwnerRepo creates an OwnerRepo.
func NewOwnerRepo(pool Pool) *OwnerRepo {
	return &OwnerRepo{pool: pool}
}

// GetByPhone fetches an owner by normalized phone number, or nil when unknown.
func (r *OwnerRepo) GetByPhone(ctx context.Context, phone string) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE phone_number = $1`

	o := &domain.Owner{}
	err := r.pool.QueryRow(ctx, query, phone).Scan(
		&o.ID, &o.PhoneNumber, &o.DisplayName, &o.Active, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get owner by phone: %w", err)
	}
	return o, nil
}

// GetByID fetches an owner by id, or nil when unknown.
func (r *OwnerRepo) GetByID(ctx context.Context, id int64) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1`

	o := &domain.Owner{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.PhoneNumber, &o.DisplayName, &o.Active, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get owner by id: %w", err)
	}
	return o, nil
}
