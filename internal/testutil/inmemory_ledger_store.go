package testutil

import (
	"context"
	"sync"

	"github.com/gymledger/gymledger/internal/domain/ledger"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type InMemoryLedgerStore struct {
	mu           sync.RWMutex
	transactions map[string]*ledger.Transaction
	dailyCash    map[string]*ledger.DailyCash
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		transactions: make(map[string]*ledger.Transaction),
		dailyCash:    make(map[string]*ledger.DailyCash),
	}
}

func (r *InMemoryLedgerStore) CreateTransaction(ctx context.Context, t *ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[t.ID]; exists {
		return ierr.NewError("transaction already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *InMemoryLedgerStore) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.transactions[id]
	if !exists || t.GymID != types.GetGymID(ctx) {
		return nil, ierr.NewError("transaction not found").
			WithHintf("Transaction %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	cp := *t
	return &cp, nil
}

func (r *InMemoryLedgerStore) ListTransactions(ctx context.Context, filter *types.LedgerTransactionFilter) ([]*ledger.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*ledger.Transaction
	for _, t := range r.transactions {
		if t.GymID != types.GetGymID(ctx) {
			continue
		}
		if !matchesTransactionFilter(t, filter) {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}
	return result, nil
}

func matchesTransactionFilter(t *ledger.Transaction, filter *types.LedgerTransactionFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Type != nil && t.Type != *filter.Type {
		return false
	}
	if filter.MemberID != "" && t.MemberID != filter.MemberID {
		return false
	}
	if filter.MembershipID != "" && t.MembershipID != filter.MembershipID {
		return false
	}
	if filter.FromDate != nil && t.Date.Before(*filter.FromDate) {
		return false
	}
	if filter.ToDate != nil && t.Date.After(*filter.ToDate) {
		return false
	}
	return true
}

func (r *InMemoryLedgerStore) UpdateTransactionStatus(ctx context.Context, id string, status types.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.transactions[id]
	if !exists {
		return ierr.NewError("transaction not found").
			Mark(ierr.ErrNotFound)
	}

	t.TxStatus = status
	return nil
}

func (r *InMemoryLedgerStore) GetDailyCash(ctx context.Context, date string) (*ledger.DailyCash, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.dailyCash[types.GetGymID(ctx)+":"+date]
	if !exists {
		return nil, ierr.NewError("no movements recorded for date").
			WithHintf("No cash movements recorded for %s", date).
			Mark(ierr.ErrNotFound)
	}

	cp := *d
	return &cp, nil
}

func (r *InMemoryLedgerStore) SaveDailyCash(ctx context.Context, d *ledger.DailyCash) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := types.GetGymID(ctx) + ":" + d.Date
	existing, exists := r.dailyCash[key]
	if exists && existing.Version != d.Version {
		return ierr.NewError("daily cash was modified concurrently").
			Mark(ierr.ErrVersionConflict)
	}

	d.Version++
	cp := *d
	r.dailyCash[key] = &cp
	return nil
}

func (r *InMemoryLedgerStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = make(map[string]*ledger.Transaction)
	r.dailyCash = make(map[string]*ledger.DailyCash)
}
