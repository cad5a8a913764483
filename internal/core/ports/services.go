package ports

import (
	"context"
	"time"

	"fintel-wallet-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

// --- Service Ports (Business Logic) ---

// TransferService is the transfer coordinator: the sole writer that may
// touch wallet balances, the journal and transfer records as one unit.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	Deposit(ctx context.Context, req FundingRequest) (*TransferResult, error)
	Withdraw(ctx context.Context, req FundingRequest) (*TransferResult, error)
}

// TransferRequest holds validated input for a wallet-to-wallet transfer.
// Reference is optional: when present it is the caller's idempotency key
// and a retry of a resolved transfer replays the original result.
type TransferRequest struct {
	SenderRef    string // phone number or owner id
	RecipientRef string
	Amount       decimal.Decimal
	Currency     string
	Description  string
	Reference    string
}

// FundingRequest holds input for a single-wallet deposit or withdrawal.
type FundingRequest struct {
	OwnerRef    string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// TransferResult is what callers observe for a resolved transfer.
type TransferResult struct {
	Reference     string                `json:"reference"`
	Status        domain.TransferStatus `json:"status"`
	SenderBalance decimal.Decimal       `json:"sender_balance"`
	Currency      string                `json:"currency"`
}

// AccountService answers balance and history queries.
type AccountService interface {
	GetBalance(ctx context.Context, ownerRef string) (*BalanceResult, error)
	GetHistory(ctx context.Context, ownerRef string, limit, offset int32) ([]domain.LedgerEntry, error)
}

// BalanceResult is the balance query response.
type BalanceResult struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// --- Collaborator Ports ---

// IdentityResolver maps an external identifier (phone number in any common
// format, or a numeric owner id) to the owner record.
type IdentityResolver interface {
	ResolveOwner(ctx context.Context, phoneOrID string) (*domain.Owner, error)
}

// NotificationSink receives fire-and-forget notice of resolved transfers.
// Implementations must never block the caller and their failures never
// surface into the transfer path.
type NotificationSink interface {
	TransferResolved(ctx context.Context, transfer *domain.Transfer)
}

// ReferenceGenerator issues globally unique transfer references drawn from
// a cryptographically strong source.
type ReferenceGenerator interface {
	New() string
}

// IdempotencyCache is the fast-path replay check for transfer references.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // cached result JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TokenService handles JWT token operations for the auth gate.
type TokenService interface {
	Generate(ownerID int64, phone string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OwnerID int64
	Phone   string
}
