package scanlock

import (
	"context"
	"fmt"
	"time"

	"github.com/gymledger/gymledger/internal/types"
)

// ScanLock is a date-keyed idempotency marker recorded before a scheduled
// batch run. Acquiring it is a conditional create: a second trigger for the
// same gym, scope and date fails, which is what enforces the once-per-day
// intent for the expiration and renewal scans.
type ScanLock struct {
	Key        string    `json:"key"`
	Scope      string    `json:"scope"`
	Date       string    `json:"date"`
	AcquiredAt time.Time `json:"acquired_at"`
	AcquiredBy string    `json:"acquired_by"`
	types.BaseModel
}

// New builds the lock marker for a scope and civil date.
func New(ctx context.Context, scope, date string) *ScanLock {
	return &ScanLock{
		Key:        LockKey(scope, date),
		Scope:      scope,
		Date:       date,
		AcquiredAt: time.Now().UTC(),
		AcquiredBy: types.GetActorID(ctx),
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

// LockKey returns the deterministic marker key for a scope and date.
func LockKey(scope, date string) string {
	return fmt.Sprintf("%s:%s", scope, date)
}

// Repository defines the interface for scan lock operations
type Repository interface {
	// Acquire conditionally creates the marker; it returns an already exists
	// error when a run for the same gym, scope and date has been recorded.
	Acquire(ctx context.Context, lock *ScanLock) error
}
