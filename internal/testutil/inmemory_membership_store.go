package testutil

import (
	"context"
	"sync"

	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type InMemoryMembershipStore struct {
	mu          sync.RWMutex
	memberships map[string]*membership.MembershipAssignment
}

func NewInMemoryMembershipStore() *InMemoryMembershipStore {
	return &InMemoryMembershipStore{
		memberships: make(map[string]*membership.MembershipAssignment),
	}
}

func (r *InMemoryMembershipStore) Create(ctx context.Context, m *membership.MembershipAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.memberships[m.ID]; exists {
		return ierr.NewError("membership already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *m
	r.memberships[m.ID] = &cp
	return nil
}

func (r *InMemoryMembershipStore) Get(ctx context.Context, id string) (*membership.MembershipAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.memberships[id]
	if !exists || m.GymID != types.GetGymID(ctx) {
		return nil, ierr.NewError("membership not found").
			WithHintf("Membership %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	cp := *m
	return &cp, nil
}

func (r *InMemoryMembershipStore) List(ctx context.Context, filter *types.MembershipFilter) ([]*membership.MembershipAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*membership.MembershipAssignment
	for _, m := range r.memberships {
		if m.GymID != types.GetGymID(ctx) {
			continue
		}
		if !matchesMembershipFilter(m, filter) {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}
	return result, nil
}

func matchesMembershipFilter(m *membership.MembershipAssignment, filter *types.MembershipFilter) bool {
	if filter == nil {
		return true
	}
	if filter.MemberID != "" && m.MemberID != filter.MemberID {
		return false
	}
	if filter.Status != nil && m.MembershipStatus != *filter.Status {
		return false
	}
	if filter.PaymentStatus != nil && m.PaymentStatus != *filter.PaymentStatus {
		return false
	}
	if filter.AutoRenewal != nil && m.AutoRenewal != *filter.AutoRenewal {
		return false
	}
	if filter.EndBefore != nil {
		if m.EndDate.IsZero() || !m.EndDate.Before(*filter.EndBefore) {
			return false
		}
	}
	if filter.EndOnOrBefore != nil {
		if m.EndDate.IsZero() || m.EndDate.After(*filter.EndOnOrBefore) {
			return false
		}
	}
	return true
}

func (r *InMemoryMembershipStore) Update(ctx context.Context, m *membership.MembershipAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.memberships[m.ID]
	if !exists {
		return ierr.NewError("membership not found").
			Mark(ierr.ErrNotFound)
	}
	if existing.Version != m.Version {
		return ierr.NewError("membership was modified concurrently").
			Mark(ierr.ErrVersionConflict)
	}

	m.Version++
	cp := *m
	r.memberships[m.ID] = &cp
	return nil
}

func (r *InMemoryMembershipStore) GetByRenewalKey(ctx context.Context, key string) (*membership.MembershipAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.memberships {
		if m.GymID == types.GetGymID(ctx) && m.RenewalKey == key {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ierr.NewError("renewal not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryMembershipStore) BatchExpire(ctx context.Context, ms []*membership.MembershipAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// All or nothing, like the guarded batch in the real store: a stale
	// version anywhere rejects the whole batch.
	for _, m := range ms {
		existing, exists := r.memberships[m.ID]
		if !exists {
			return ierr.NewError("membership not found").
				Mark(ierr.ErrNotFound)
		}
		if existing.Version != m.Version {
			return ierr.NewError("membership was modified concurrently").
				Mark(ierr.ErrVersionConflict)
		}
	}

	for _, m := range ms {
		m.Version++
		cp := *m
		r.memberships[m.ID] = &cp
	}
	return nil
}

func (r *InMemoryMembershipStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberships = make(map[string]*membership.MembershipAssignment)
}
