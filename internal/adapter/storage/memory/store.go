// Package memory is a single-process storage backend with the same locking
// and atomicity contract as the postgres adapter. It backs local development
// without a database and the concurrency tests, where real interleavings
// matter more than real I/O.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Store implements ports.Transactor, ports.WalletStore, ports.LedgerJournal,
// ports.TransferStore and ports.OwnerDirectory over process memory.
//
// Each wallet has a one-slot lock channel. A unit's writes stage inside its
// Tx and become visible only at Commit, under the store mutex, so readers
// never observe a half-applied transfer.
type Store struct {
	mu             sync.Mutex
	wallets        map[int64]*domain.Wallet
	walletsByOwner map[int64]int64
	entries        map[int64][]domain.LedgerEntry
	transfers      map[string]*domain.Transfer
	owners         map[int64]*domain.Owner
	ownersByPhone  map[string]int64
	locks          map[int64]chan struct{}

	nextWalletID   int64
	nextEntryID    int64
	nextTransferID int64
	nextOwnerID    int64

	currency string
	lockWait time.Duration
}

// NewStore creates an empty Store. lockWait bounds how long LockFor blocks
// on a contended wallet before giving up.
func NewStore(currency string, lockWait time.Duration) *Store {
	if lockWait <= 0 {
		lockWait = 3 * time.Second
	}
	return &Store{
		wallets:        make(map[int64]*domain.Wallet),
		walletsByOwner: make(map[int64]int64),
		entries:        make(map[int64][]domain.LedgerEntry),
		transfers:      make(map[string]*domain.Transfer),
		owners:         make(map[int64]*domain.Owner),
		ownersByPhone:  make(map[string]int64),
		locks:          make(map[int64]chan struct{}),
		currency:       currency,
		lockWait:       lockWait,
	}
}

// AddOwner registers an owner with the given phone number and returns it.
func (s *Store) AddOwner(phone, displayName string) *domain.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ownersByPhone[phone]; ok {
		cp := *s.owners[id]
		return &cp
	}

	s.nextOwnerID++
	o := &domain.Owner{
		ID:          s.nextOwnerID,
		PhoneNumber: phone,
		DisplayName: displayName,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	s.owners[o.ID] = o
	s.ownersByPhone[phone] = o.ID
	cp := *o
	return &cp
}

// --- ports.OwnerDirectory ---

// Owners returns the store's owner directory view.
func (s *Store) Owners() *OwnerDirectory {
	return &OwnerDirectory{store: s}
}

// OwnerDirectory implements ports.OwnerDirectory over the store's owners.
type OwnerDirectory struct {
	store *Store
}

func (d *OwnerDirectory) GetByPhone(_ context.Context, phone string) (*domain.Owner, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	id, ok := d.store.ownersByPhone[phone]
	if !ok {
		return nil, nil
	}
	cp := *d.store.owners[id]
	return &cp, nil
}

func (d *OwnerDirectory) GetByID(_ context.Context, id int64) (*domain.Owner, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	o, ok := d.store.owners[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

// --- ports.Transactor ---

// Begin opens an atomic unit. All writes stage in the returned Tx until
// Commit.
func (s *Store) Begin(_ context.Context) (ports.Tx, error) {
	return &Tx{
		store:   s,
		staged:  make(map[int64]*domain.Wallet),
		held:    make(map[int64]bool),
		lockSeq: nil,
	}, nil
}

// --- ports.WalletStore ---

func (s *Store) GetOrCreate(_ context.Context, ownerID int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.walletsByOwner[ownerID]; ok {
		cp := *s.wallets[id]
		return &cp, nil
	}

	s.nextWalletID++
	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:        s.nextWalletID,
		OwnerID:   ownerID,
		Balance:   decimal.Zero,
		Currency:  s.currency,
		Version:   1,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.wallets[w.ID] = w
	s.walletsByOwner[ownerID] = w.ID
	s.locks[w.ID] = make(chan struct{}, 1)
	cp := *w
	return &cp, nil
}

func (s *Store) GetByOwner(_ context.Context, ownerID int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.walletsByOwner[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *s.wallets[id]
	return &cp, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// LockFor acquires the wallet's lock slot for the duration of tx. The wait
// is bounded by the store's lockWait and the context deadline.
func (s *Store) LockFor(ctx context.Context, tx ports.Tx, walletID int64) (*domain.Wallet, error) {
	t, err := s.memTx(tx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ch, ok := s.locks[walletID]
	if !ok {
		s.mu.Unlock()
		return nil, ports.ErrWalletNotFound
	}
	s.mu.Unlock()

	if t.held[walletID] {
		cp := *t.staged[walletID]
		return &cp, nil
	}

	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
	case <-timer.C:
		return nil, ports.ErrLockNotAvailable
	case <-ctx.Done():
		return nil, ports.ErrLockNotAvailable
	}

	t.held[walletID] = true
	t.lockSeq = append(t.lockSeq, walletID)

	s.mu.Lock()
	w, ok := s.wallets[walletID]
	if !ok {
		s.mu.Unlock()
		return nil, ports.ErrWalletNotFound
	}
	cp := *w
	s.mu.Unlock()

	t.staged[walletID] = &cp
	out := cp
	return &out, nil
}

// ApplyDelta mutates the staged copy of a locked wallet. The change is not
// visible outside the unit until Commit.
func (s *Store) ApplyDelta(_ context.Context, tx ports.Tx, walletID int64, amount decimal.Decimal, direction domain.Direction) (*domain.Wallet, error) {
	t, err := s.memTx(tx)
	if err != nil {
		return nil, err
	}

	w, ok := t.staged[walletID]
	if !ok || !t.held[walletID] {
		return nil, fmt.Errorf("wallet %d is not locked by this unit", walletID)
	}

	if direction == domain.DirectionDebit {
		if !w.CanDebit(amount) {
			return nil, ports.ErrInsufficientFunds
		}
		w.Balance = w.Balance.Sub(amount)
	} else {
		w.Balance = w.Balance.Add(amount)
	}
	w.Version++
	w.UpdatedAt = time.Now().UTC()

	cp := *w
	return &cp, nil
}

func (s *Store) Deactivate(_ context.Context, walletID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[walletID]
	if !ok {
		return ports.ErrWalletNotFound
	}
	w.Active = false
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// --- ports.LedgerJournal ---

func (s *Store) Append(_ context.Context, tx ports.Tx, entries []domain.LedgerEntry) error {
	t, err := s.memTx(tx)
	if err != nil {
		return err
	}
	t.stagedEntries = append(t.stagedEntries, entries...)
	return nil
}

func (s *Store) History(_ context.Context, walletID int64, limit, offset int32) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.entries[walletID]
	out := make([]domain.LedgerEntry, len(all))
	copy(out, all)

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	start := int(offset)
	if start >= len(out) {
		return []domain.LedgerEntry{}, nil
	}
	end := start + int(limit)
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

// --- ports.TransferStore ---

func (s *Store) Create(_ context.Context, tx ports.Tx, transfer *domain.Transfer) error {
	t, err := s.memTx(tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, exists := s.transfers[transfer.Reference]
	s.mu.Unlock()
	if exists {
		return ports.ErrDuplicateReference
	}
	for _, st := range t.stagedTransfers {
		if st.Reference == transfer.Reference {
			return ports.ErrDuplicateReference
		}
	}

	t.stagedTransfers = append(t.stagedTransfers, transfer)
	return nil
}

func (s *Store) GetByReference(_ context.Context, reference string) (*domain.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.transfers[reference]
	if !ok {
		return nil, nil
	}
	cp := *tr
	return &cp, nil
}

// RecordFailed writes a terminal failed transfer directly, outside any unit.
func (s *Store) RecordFailed(_ context.Context, transfer *domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transfers[transfer.Reference]; exists {
		return nil
	}
	s.nextTransferID++
	transfer.ID = s.nextTransferID
	cp := *transfer
	s.transfers[cp.Reference] = &cp
	return nil
}

func (s *Store) memTx(tx ports.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("transaction handle is not a memory transaction: %T", tx)
	}
	if t.done {
		return nil, fmt.Errorf("transaction already finished")
	}
	return t, nil
}
