package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// idempotencyTTL bounds how long a replayed reference can hit the cache
// before falling through to the transfer store.
const idempotencyTTL = 24 * time.Hour

// failureInsufficientFunds is the recorded reason for debit rejections; a
// replay of the reference maps it back onto the original error.
const failureInsufficientFunds = "insufficient funds"

// TransferCoordinator is the sole writer over wallet balances. Every money
// movement runs as one atomic unit: both balances, the ledger pair and the
// transfer record commit together or not at all. Wallet locks are always
// taken in ascending wallet id order, which is the only thing preventing
// deadlock between concurrent opposing transfers.
type TransferCoordinator struct {
	transactor ports.Transactor
	wallets    ports.WalletStore
	journal    ports.LedgerJournal
	transfers  ports.TransferStore
	identity   ports.IdentityResolver
	refs       ports.ReferenceGenerator
	cache      ports.IdempotencyCache // optional
	notifier   ports.NotificationSink // optional
	currency   string
	log        zerolog.Logger
}

// NewTransferCoordinator creates a TransferCoordinator. cache and notifier
// may be nil; both are best-effort side channels.
func NewTransferCoordinator(
	transactor ports.Transactor,
	wallets ports.WalletStore,
	journal ports.LedgerJournal,
	transfers ports.TransferStore,
	identity ports.IdentityResolver,
	refs ports.ReferenceGenerator,
	cache ports.IdempotencyCache,
	notifier ports.NotificationSink,
	currency string,
	log zerolog.Logger,
) *TransferCoordinator {
	return &TransferCoordinator{
		transactor: transactor,
		wallets:    wallets,
		journal:    journal,
		transfers:  transfers,
		identity:   identity,
		refs:       refs,
		cache:      cache,
		notifier:   notifier,
		currency:   currency,
		log:        log,
	}
}

// Transfer moves req.Amount from the sender's wallet to the recipient's as
// one atomic unit. A client-supplied reference acts as an idempotency key:
// retrying a resolved transfer replays the original outcome without moving
// money again.
func (s *TransferCoordinator) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if err := s.validateAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}

	sender, err := s.identity.ResolveOwner(ctx, req.SenderRef)
	if err != nil {
		return nil, err
	}
	recipient, err := s.identity.ResolveOwner(ctx, req.RecipientRef)
	if err != nil {
		return nil, err
	}
	if sender.ID == recipient.ID {
		return nil, apperror.ErrSelfTransfer()
	}

	senderWallet, err := s.wallets.GetOrCreate(ctx, sender.ID)
	if err != nil {
		return nil, apperror.ErrPersistence("sender wallet", err)
	}
	recipientWallet, err := s.wallets.GetOrCreate(ctx, recipient.ID)
	if err != nil {
		return nil, apperror.ErrPersistence("recipient wallet", err)
	}
	if !senderWallet.Active || !recipientWallet.Active {
		return nil, apperror.ErrWalletInactive()
	}

	reference := req.Reference
	if reference != "" {
		if result, err := s.replay(ctx, reference); result != nil || err != nil {
			return result, err
		}
	} else {
		reference = s.refs.New()
	}

	result, appErr := s.executeTransfer(ctx, reference, req, senderWallet, recipientWallet)
	if appErr != nil {
		return nil, appErr
	}
	return result, nil
}

// executeTransfer runs the locked unit for a wallet-to-wallet move.
func (s *TransferCoordinator) executeTransfer(
	ctx context.Context,
	reference string,
	req ports.TransferRequest,
	senderWallet, recipientWallet *domain.Wallet,
) (*ports.TransferResult, error) {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence("begin", err)
	}
	// finished means the unit already ended, by commit or explicit rollback.
	finished := false
	defer func() {
		if !finished {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.log.Warn().Err(rbErr).Str("reference", reference).Msg("rollback failed")
			}
		}
	}()

	// Lock both wallets in ascending id order regardless of direction.
	first, second := senderWallet.ID, recipientWallet.ID
	if first > second {
		first, second = second, first
	}
	var lockedSender *domain.Wallet
	for _, id := range []int64{first, second} {
		locked, lockErr := s.wallets.LockFor(ctx, tx, id)
		if lockErr != nil {
			return nil, s.mapLockErr("lock wallet", lockErr)
		}
		if id == senderWallet.ID {
			lockedSender = locked
		}
	}

	if !lockedSender.CanDebit(req.Amount) {
		s.recordFailure(ctx, reference, req, senderWallet.ID, recipientWallet.ID, lockedSender.Balance)
		return nil, apperror.ErrInsufficientFunds()
	}

	debited, err := s.wallets.ApplyDelta(ctx, tx, senderWallet.ID, req.Amount, domain.DirectionDebit)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientFunds) {
			s.recordFailure(ctx, reference, req, senderWallet.ID, recipientWallet.ID, lockedSender.Balance)
			return nil, apperror.ErrInsufficientFunds()
		}
		return nil, s.mapLockErr("debit", err)
	}

	if _, err = s.wallets.ApplyDelta(ctx, tx, recipientWallet.ID, req.Amount, domain.DirectionCredit); err != nil {
		return nil, s.mapLockErr("credit", err)
	}

	now := time.Now().UTC()
	entries := domain.NewTransferEntries(reference, senderWallet.ID, recipientWallet.ID, req.Amount, now)
	for i := range entries {
		entries[i].Description = req.Description
	}
	if err = s.journal.Append(ctx, tx, entries); err != nil {
		return nil, apperror.ErrPersistence("journal append", err)
	}

	transfer := &domain.Transfer{
		Reference:         reference,
		SenderWalletID:    senderWallet.ID,
		RecipientWalletID: recipientWallet.ID,
		Amount:            req.Amount,
		Currency:          s.currency,
		Status:            domain.TransferStatusCompleted,
		Description:       req.Description,
		SenderBalance:     debited.Balance,
		CreatedAt:         now,
		CompletedAt:       &now,
	}
	if err = s.transfers.Create(ctx, tx, transfer); err != nil {
		if errors.Is(err, ports.ErrDuplicateReference) {
			// A concurrent request with the same reference won the race.
			// Our unit rolls back; the caller gets the winner's outcome.
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.log.Warn().Err(rbErr).Str("reference", reference).Msg("rollback after duplicate")
			}
			finished = true
			if result, replayErr := s.replay(ctx, reference); result != nil || replayErr != nil {
				return result, replayErr
			}
			return nil, apperror.ErrConcurrencyConflict(err)
		}
		return nil, apperror.ErrPersistence("transfer record", err)
	}

	if err = tx.Commit(ctx); err != nil {
		if errors.Is(err, ports.ErrDuplicateReference) {
			// Backends that defer unique checks to publish time reject here
			// instead of at Create; the unit is already terminated.
			finished = true
			if result, replayErr := s.replay(ctx, reference); result != nil || replayErr != nil {
				return result, replayErr
			}
			return nil, apperror.ErrConcurrencyConflict(err)
		}
		return nil, apperror.ErrPersistence("commit", err)
	}
	finished = true

	result := &ports.TransferResult{
		Reference:     reference,
		Status:        transfer.Status,
		SenderBalance: transfer.SenderBalance,
		Currency:      transfer.Currency,
	}
	s.afterResolve(ctx, transfer, result)

	s.log.Info().
		Str("reference", reference).
		Int64("sender_wallet", senderWallet.ID).
		Int64("recipient_wallet", recipientWallet.ID).
		Str("amount", req.Amount.String()).
		Msg("transfer completed")
	return result, nil
}

// Deposit credits the owner's wallet from an external source.
func (s *TransferCoordinator) Deposit(ctx context.Context, req ports.FundingRequest) (*ports.TransferResult, error) {
	return s.fund(ctx, req, domain.DirectionCredit)
}

// Withdraw debits the owner's wallet towards an external destination.
func (s *TransferCoordinator) Withdraw(ctx context.Context, req ports.FundingRequest) (*ports.TransferResult, error) {
	return s.fund(ctx, req, domain.DirectionDebit)
}

// fund runs a single-wallet atomic unit for deposits and withdrawals. The
// ledger entry has no counterpart wallet; the transfer record points at the
// funded wallet on both sides.
func (s *TransferCoordinator) fund(ctx context.Context, req ports.FundingRequest, direction domain.Direction) (*ports.TransferResult, error) {
	if err := s.validateAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}

	owner, err := s.identity.ResolveOwner(ctx, req.OwnerRef)
	if err != nil {
		return nil, err
	}
	wallet, err := s.wallets.GetOrCreate(ctx, owner.ID)
	if err != nil {
		return nil, apperror.ErrPersistence("wallet lookup", err)
	}
	if !wallet.Active {
		return nil, apperror.ErrWalletInactive()
	}

	reference := s.refs.New()

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.log.Warn().Err(rbErr).Str("reference", reference).Msg("rollback failed")
			}
		}
	}()

	locked, err := s.wallets.LockFor(ctx, tx, wallet.ID)
	if err != nil {
		return nil, s.mapLockErr("lock wallet", err)
	}

	if direction == domain.DirectionDebit && !locked.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	updated, err := s.wallets.ApplyDelta(ctx, tx, wallet.ID, req.Amount, direction)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientFunds) {
			return nil, apperror.ErrInsufficientFunds()
		}
		return nil, s.mapLockErr("apply delta", err)
	}

	now := time.Now().UTC()
	entry := domain.LedgerEntry{
		WalletID:    wallet.ID,
		Direction:   direction,
		Amount:      req.Amount,
		Reference:   reference,
		Description: req.Description,
		Status:      domain.EntryStatusCompleted,
		CreatedAt:   now,
	}
	if err = s.journal.Append(ctx, tx, []domain.LedgerEntry{entry}); err != nil {
		return nil, apperror.ErrPersistence("journal append", err)
	}

	transfer := &domain.Transfer{
		Reference:         reference,
		SenderWalletID:    wallet.ID,
		RecipientWalletID: wallet.ID,
		Amount:            req.Amount,
		Currency:          s.currency,
		Status:            domain.TransferStatusCompleted,
		Description:       req.Description,
		SenderBalance:     updated.Balance,
		CreatedAt:         now,
		CompletedAt:       &now,
	}
	if err = s.transfers.Create(ctx, tx, transfer); err != nil {
		return nil, apperror.ErrPersistence("transfer record", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence("commit", err)
	}
	committed = true

	result := &ports.TransferResult{
		Reference:     reference,
		Status:        transfer.Status,
		SenderBalance: updated.Balance,
		Currency:      transfer.Currency,
	}
	s.afterResolve(ctx, transfer, result)
	return result, nil
}

func (s *TransferCoordinator) validateAmount(amount decimal.Decimal, currency string) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if currency != "" && currency != s.currency {
		return apperror.ErrCurrencyMismatch(s.currency, currency)
	}
	return nil
}

// replay checks the two idempotency layers for an existing outcome under
// reference. It returns (nil, nil) when the reference is fresh. A completed
// transfer replays its result; a failed one replays its original rejection.
func (s *TransferCoordinator) replay(ctx context.Context, reference string) (*ports.TransferResult, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, reference)
		if err != nil {
			s.log.Warn().Err(err).Str("reference", reference).Msg("idempotency cache read failed")
		} else if cached != nil {
			var result ports.TransferResult
			if err := json.Unmarshal(cached, &result); err == nil {
				s.log.Debug().Str("reference", reference).Msg("idempotent replay from cache")
				return &result, nil
			}
		}
	}

	existing, err := s.transfers.GetByReference(ctx, reference)
	if err != nil {
		return nil, apperror.ErrPersistence("reference lookup", err)
	}
	if existing == nil {
		return nil, nil
	}
	if !existing.IsTerminal() {
		// Another request is mid-flight with this reference.
		return nil, apperror.ErrConcurrencyConflict(ports.ErrDuplicateReference)
	}
	if existing.Status == domain.TransferStatusFailed {
		s.log.Debug().Str("reference", reference).Msg("idempotent replay of failed transfer")
		return nil, failureError(existing.FailureReason)
	}
	s.log.Debug().Str("reference", reference).Msg("idempotent replay from store")
	return &ports.TransferResult{
		Reference:     existing.Reference,
		Status:        existing.Status,
		SenderBalance: existing.SenderBalance,
		Currency:      existing.Currency,
	}, nil
}

// failureError maps a recorded failure reason back onto the rejection the
// original attempt returned.
func failureError(reason string) error {
	if reason == failureInsufficientFunds {
		return apperror.ErrInsufficientFunds()
	}
	return apperror.ErrPersistence("transfer failed", errors.New(reason))
}

// recordFailure persists a terminal failed insufficient-funds transfer
// outside the aborted unit, keeping the sender's real balance on the record.
// Best effort: losing the record loses observability, not money.
func (s *TransferCoordinator) recordFailure(ctx context.Context, reference string, req ports.TransferRequest, senderWalletID, recipientWalletID int64, senderBalance decimal.Decimal) {
	now := time.Now().UTC()
	failed := &domain.Transfer{
		Reference:         reference,
		SenderWalletID:    senderWalletID,
		RecipientWalletID: recipientWalletID,
		Amount:            req.Amount,
		Currency:          s.currency,
		Status:            domain.TransferStatusFailed,
		Description:       req.Description,
		FailureReason:     failureInsufficientFunds,
		SenderBalance:     senderBalance,
		CreatedAt:         now,
		CompletedAt:       &now,
	}
	if err := s.transfers.RecordFailed(ctx, failed); err != nil {
		s.log.Error().Err(err).Str("reference", reference).Msg("record failed transfer")
		return
	}
	if s.notifier != nil {
		s.notifier.TransferResolved(ctx, failed)
	}
}

// afterResolve performs the best-effort post-commit work: caching the result
// under its reference and notifying listeners. Neither can fail the transfer.
func (s *TransferCoordinator) afterResolve(ctx context.Context, transfer *domain.Transfer, result *ports.TransferResult) {
	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, transfer.Reference, payload, idempotencyTTL); err != nil {
				s.log.Warn().Err(err).Str("reference", transfer.Reference).Msg("idempotency cache write failed")
			}
		}
	}
	if s.notifier != nil {
		s.notifier.TransferResolved(ctx, transfer)
	}
}

func (s *TransferCoordinator) mapLockErr(stage string, err error) error {
	if errors.Is(err, ports.ErrLockNotAvailable) {
		return apperror.ErrConcurrencyConflict(err)
	}
	if errors.Is(err, ports.ErrWalletNotFound) {
		return apperror.ErrNotFound("Wallet")
	}
	return apperror.ErrPersistence(stage, err)
}
