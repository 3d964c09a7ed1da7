package service

import (
	"context"
	"time"

	"github.com/gymledger/gymledger/internal/cache"
	"github.com/gymledger/gymledger/internal/config"
	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	"github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/domain/membership"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     docstore.IClient
	Cache  cache.Cache

	// Repositories
	MemberRepo          member.Repository
	MembershipRepo      membership.Repository
	RecurringChargeRepo membership.RecurringChargeRepository
	LedgerRepo          ledger.Repository
	ScanLockRepo        scanlock.Repository
}

// location resolves the configured civil timezone, defaulting to UTC when
// the configuration cannot produce one.
func (p ServiceParams) location() *time.Location {
	loc, err := p.Config.Ledger.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

// rollIntoDailyCash folds one ledger entry into its day's aggregate,
// creating the zeroed aggregate on the day's first movement. Must run inside
// the same transaction that appends the entry.
func (p ServiceParams) rollIntoDailyCash(ctx context.Context, t *ledger.Transaction) error {
	key := t.DateKey(p.location())

	day, err := p.LedgerRepo.GetDailyCash(ctx, key)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return err
		}
		day = ledger.NewDailyCash(ctx, key)
	}

	day.Apply(t)
	day.Touch(ctx)
	return p.LedgerRepo.SaveDailyCash(ctx, day)
}
