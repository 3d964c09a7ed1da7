package testutil

import (
	"context"
	"sync"

	"github.com/gymledger/gymledger/internal/domain/member"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type InMemoryMemberStore struct {
	mu      sync.RWMutex
	members map[string]*member.Member
}

func NewInMemoryMemberStore() *InMemoryMemberStore {
	return &InMemoryMemberStore{
		members: make(map[string]*member.Member),
	}
}

func (r *InMemoryMemberStore) Create(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[m.ID]; exists {
		return ierr.NewError("member already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *InMemoryMemberStore) Get(ctx context.Context, id string) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.members[id]
	if !exists || m.GymID != types.GetGymID(ctx) {
		return nil, ierr.NewError("member not found").
			WithHintf("Member %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	cp := *m
	return &cp, nil
}

func (r *InMemoryMemberStore) List(ctx context.Context, filter *types.MemberFilter) ([]*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*member.Member
	for _, m := range r.members {
		if m.GymID != types.GetGymID(ctx) {
			continue
		}
		if filter != nil && filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}
	return result, nil
}

func (r *InMemoryMemberStore) Update(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.members[m.ID]
	if !exists {
		return ierr.NewError("member not found").
			Mark(ierr.ErrNotFound)
	}
	if existing.Version != m.Version {
		return ierr.NewError("member was modified concurrently").
			Mark(ierr.ErrVersionConflict)
	}

	m.Version++
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *InMemoryMemberStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = make(map[string]*member.Member)
}
