package service

import (
	"context"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// AccountService answers balance and history queries. Reads go straight to
// the stores; no locks are taken, so a concurrent transfer may commit between
// two successive reads.
type AccountService struct {
	identity ports.IdentityResolver
	wallets  ports.WalletStore
	journal  ports.LedgerJournal
	log      zerolog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(identity ports.IdentityResolver, wallets ports.WalletStore, journal ports.LedgerJournal, log zerolog.Logger) *AccountService {
	return &AccountService{
		identity: identity,
		wallets:  wallets,
		journal:  journal,
		log:      log,
	}
}

// GetBalance resolves the owner and returns the wallet balance, creating the
// wallet with a zero balance on first reference.
func (s *AccountService) GetBalance(ctx context.Context, ownerRef string) (*ports.BalanceResult, error) {
	owner, err := s.identity.ResolveOwner(ctx, ownerRef)
	if err != nil {
		return nil, err
	}

	wallet, err := s.wallets.GetOrCreate(ctx, owner.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("owner_id", owner.ID).Msg("get or create wallet")
		return nil, apperror.ErrPersistence("wallet lookup", err)
	}

	return &ports.BalanceResult{
		Balance:  wallet.Balance,
		Currency: wallet.Currency,
	}, nil
}

// GetHistory returns ledger entries for the owner's wallet, newest first.
// limit <= 0 falls back to the default page size; an offset past the end of
// the journal yields an empty page.
func (s *AccountService) GetHistory(ctx context.Context, ownerRef string, limit, offset int32) ([]domain.LedgerEntry, error) {
	owner, err := s.identity.ResolveOwner(ctx, ownerRef)
	if err != nil {
		return nil, err
	}

	wallet, err := s.wallets.GetByOwner(ctx, owner.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("owner_id", owner.ID).Msg("wallet lookup for history")
		return nil, apperror.ErrPersistence("wallet lookup", err)
	}
	if wallet == nil {
		// No wallet yet means no activity yet.
		return []domain.LedgerEntry{}, nil
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.journal.History(ctx, wallet.ID, limit, offset)
	if err != nil {
		s.log.Error().Err(err).Int64("wallet_id", wallet.ID).Msg("history query")
		return nil, apperror.ErrPersistence("history query", err)
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return entries, nil
}
