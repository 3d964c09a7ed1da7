package service

import (
	"github.com/gymledger/gymledger/internal/cache"
	"github.com/gymledger/gymledger/internal/config"
	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	"github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/domain/membership"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	"github.com/gymledger/gymledger/internal/logger"
)

// NewServiceParams assembles the common service dependency bundle.
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db docstore.IClient,
	cache cache.Cache,
	memberRepo member.Repository,
	membershipRepo membership.Repository,
	recurringChargeRepo membership.RecurringChargeRepository,
	ledgerRepo ledger.Repository,
	scanLockRepo scanlock.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		DB:                  db,
		Cache:               cache,
		MemberRepo:          memberRepo,
		MembershipRepo:      membershipRepo,
		RecurringChargeRepo: recurringChargeRepo,
		LedgerRepo:          ledgerRepo,
		ScanLockRepo:        scanLockRepo,
	}
}
