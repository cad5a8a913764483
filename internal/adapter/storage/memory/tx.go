package memory

import (
	"context"
	"fmt"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
)

// Tx is one atomic unit against the Store. Wallet mutations, ledger entries
// and transfer records stage here and publish together under the store mutex
// at Commit. Rollback discards everything. Either way the unit's wallet
// locks are released exactly once.
type Tx struct {
	store           *Store
	staged          map[int64]*domain.Wallet
	held            map[int64]bool
	lockSeq         []int64
	stagedEntries   []domain.LedgerEntry
	stagedTransfers []*domain.Transfer
	done            bool
}

// Commit publishes the unit's staged state. Reference uniqueness is checked
// again at publish time: two units over disjoint wallets can stage the same
// reference without ever contending on a lock, and only the first to commit
// may win.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	for _, tr := range t.stagedTransfers {
		if _, exists := s.transfers[tr.Reference]; exists {
			s.mu.Unlock()
			t.releaseLocks()
			return ports.ErrDuplicateReference
		}
	}
	for id, staged := range t.staged {
		if live, ok := s.wallets[id]; ok {
			*live = *staged
		}
	}
	for _, e := range t.stagedEntries {
		s.nextEntryID++
		e.ID = s.nextEntryID
		s.entries[e.WalletID] = append(s.entries[e.WalletID], e)
	}
	for _, tr := range t.stagedTransfers {
		s.nextTransferID++
		tr.ID = s.nextTransferID
		cp := *tr
		s.transfers[cp.Reference] = &cp
	}
	s.mu.Unlock()

	t.releaseLocks()
	return nil
}

// Rollback discards the unit's staged state. Rolling back a finished unit is
// a no-op, matching what database drivers tolerate in deferred cleanup.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.releaseLocks()
	return nil
}

func (t *Tx) releaseLocks() {
	s := t.store
	// Release in reverse acquisition order.
	for i := len(t.lockSeq) - 1; i >= 0; i-- {
		id := t.lockSeq[i]
		s.mu.Lock()
		ch, ok := s.locks[id]
		s.mu.Unlock()
		if ok {
			<-ch
		}
	}
	t.lockSeq = nil
	t.held = map[int64]bool{}
}
