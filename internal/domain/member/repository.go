package member

import (
	"context"

	"github.com/gymledger/gymledger/internal/types"
)

// Repository defines the interface for member persistence operations
type Repository interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, id string) (*Member, error)
	List(ctx context.Context, filter *types.MemberFilter) ([]*Member, error)
	// Update persists the member with an optimistic version check; a stale
	// version surfaces as a version conflict.
	Update(ctx context.Context, m *Member) error
}
