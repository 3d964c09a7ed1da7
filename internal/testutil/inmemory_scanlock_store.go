package testutil

import (
	"context"
	"sync"

	"github.com/gymledger/gymledger/internal/domain/scanlock"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type InMemoryScanLockStore struct {
	mu    sync.Mutex
	locks map[string]*scanlock.ScanLock
}

func NewInMemoryScanLockStore() *InMemoryScanLockStore {
	return &InMemoryScanLockStore{
		locks: make(map[string]*scanlock.ScanLock),
	}
}

func (r *InMemoryScanLockStore) Acquire(ctx context.Context, lock *scanlock.ScanLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := types.GetGymID(ctx) + ":" + lock.Key
	if _, exists := r.locks[key]; exists {
		return ierr.NewError("scan already ran for this date").
			WithHintf("A %s run was already recorded for %s", lock.Scope, lock.Date).
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *lock
	r.locks[key] = &cp
	return nil
}

func (r *InMemoryScanLockStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = make(map[string]*scanlock.ScanLock)
}
