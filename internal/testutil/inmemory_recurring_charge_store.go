package testutil

import (
	"context"
	"sync"

	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type InMemoryRecurringChargeStore struct {
	mu      sync.RWMutex
	charges map[string]*membership.RecurringCharge
}

func NewInMemoryRecurringChargeStore() *InMemoryRecurringChargeStore {
	return &InMemoryRecurringChargeStore{
		charges: make(map[string]*membership.RecurringCharge),
	}
}

func (r *InMemoryRecurringChargeStore) Create(ctx context.Context, c *membership.RecurringCharge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.charges[c.ID]; exists {
		return ierr.NewError("recurring charge already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *c
	r.charges[c.ID] = &cp
	return nil
}

func (r *InMemoryRecurringChargeStore) ListPendingByMembership(ctx context.Context, membershipID string) ([]*membership.RecurringCharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*membership.RecurringCharge
	for _, c := range r.charges {
		if c.GymID != types.GetGymID(ctx) {
			continue
		}
		if c.MembershipID != membershipID || c.ChargeStatus != types.RecurringChargeStatusPending {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (r *InMemoryRecurringChargeStore) Update(ctx context.Context, c *membership.RecurringCharge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.charges[c.ID]; !exists {
		return ierr.NewError("recurring charge not found").
			Mark(ierr.ErrNotFound)
	}

	cp := *c
	r.charges[c.ID] = &cp
	return nil
}

// Charges returns the stored charges for assertions.
func (r *InMemoryRecurringChargeStore) Charges() []*membership.RecurringCharge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*membership.RecurringCharge
	for _, c := range r.charges {
		cp := *c
		result = append(result, &cp)
	}
	return result
}

func (r *InMemoryRecurringChargeStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges = make(map[string]*membership.RecurringCharge)
}
