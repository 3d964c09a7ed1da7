package membership

import (
	"context"

	"github.com/gymledger/gymledger/internal/types"
)

// Repository defines the interface for membership persistence operations
type Repository interface {
	Create(ctx context.Context, m *MembershipAssignment) error
	Get(ctx context.Context, id string) (*MembershipAssignment, error)
	List(ctx context.Context, filter *types.MembershipFilter) ([]*MembershipAssignment, error)
	// Update persists the assignment with an optimistic version check.
	Update(ctx context.Context, m *MembershipAssignment) error

	// GetByRenewalKey returns the successor carrying the given renewal
	// idempotency key, or a not found error.
	GetByRenewalKey(ctx context.Context, key string) (*MembershipAssignment, error)

	// BatchExpire persists already-transitioned assignments through the
	// store's bounded batch writes. Not atomic across the whole set: a crash
	// can leave earlier batches committed, which is safe because expiration
	// is idempotent.
	BatchExpire(ctx context.Context, ms []*MembershipAssignment) error
}
