package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/testutil"
	"github.com/gymledger/gymledger/internal/types"
)

type ExpirationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ExpirationService
}

func TestExpirationService(t *testing.T) {
	suite.Run(t, new(ExpirationServiceSuite))
}

func (s *ExpirationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewExpirationService(ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		DB:                  s.GetDB(),
		Cache:               s.GetCache(),
		MemberRepo:          s.GetStores().MemberRepo,
		MembershipRepo:      s.GetStores().MembershipRepo,
		RecurringChargeRepo: s.GetStores().RecurringChargeRepo,
		LedgerRepo:          s.GetStores().LedgerRepo,
		ScanLockRepo:        s.GetStores().ScanLockRepo,
	})
}

func (s *ExpirationServiceSuite) seedMembership(id, memberID string, endDate time.Time, status types.MembershipStatus) *membership.MembershipAssignment {
	ctx := s.GetContext()
	m := &membership.MembershipAssignment{
		ID:               id,
		MemberID:         memberID,
		ActivityName:     "Gym",
		StartDate:        endDate.AddDate(0, -1, 0),
		EndDate:          endDate,
		Cost:             decimal.NewFromInt(1000),
		MembershipStatus: status,
		PaymentStatus:    types.MembershipPaymentStatusPaid,
		PaidAmount:       decimal.NewFromInt(1000),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MembershipRepo.Create(ctx, m))
	return m
}

func (s *ExpirationServiceSuite) TestScanExpiresOnlyPastEndDates() {
	ctx := s.GetContext()
	today := s.Today()

	s.seedMembership("msh_yesterday", "mem_a", today.AddDate(0, 0, -1), types.MembershipStatusActive)
	s.seedMembership("msh_last_week", "mem_a", today.AddDate(0, 0, -7), types.MembershipStatusActive)
	s.seedMembership("msh_today", "mem_b", today, types.MembershipStatusActive)
	s.seedMembership("msh_tomorrow", "mem_b", today.AddDate(0, 0, 1), types.MembershipStatusActive)

	resp, err := s.service.RunExpirationScan(ctx, false)
	s.NoError(err)
	s.Equal(2, resp.Processed)
	s.Equal(0, resp.Failed)
	s.Empty(resp.Errors)

	expired, err := s.GetStores().MembershipRepo.Get(ctx, "msh_yesterday")
	s.NoError(err)
	s.Equal(types.MembershipStatusExpired, expired.MembershipStatus)
	s.NotNil(expired.ExpiredAt)

	// Ending today means still in force through the day
	current, err := s.GetStores().MembershipRepo.Get(ctx, "msh_today")
	s.NoError(err)
	s.Equal(types.MembershipStatusActive, current.MembershipStatus)

	future, err := s.GetStores().MembershipRepo.Get(ctx, "msh_tomorrow")
	s.NoError(err)
	s.Equal(types.MembershipStatusActive, future.MembershipStatus)
}

func (s *ExpirationServiceSuite) TestScanSkipsTerminalStates() {
	ctx := s.GetContext()
	past := s.Today().AddDate(0, 0, -3)

	s.seedMembership("msh_cancelled", "mem_a", past, types.MembershipStatusCancelled)
	s.seedMembership("msh_already_expired", "mem_a", past, types.MembershipStatusExpired)

	resp, err := s.service.RunExpirationScan(ctx, false)
	s.NoError(err)
	s.Equal(0, resp.Processed)

	cancelled, err := s.GetStores().MembershipRepo.Get(ctx, "msh_cancelled")
	s.NoError(err)
	s.Equal(types.MembershipStatusCancelled, cancelled.MembershipStatus)
}

func (s *ExpirationServiceSuite) TestConcurrentCancellationWinsOverScanWrite() {
	ctx := s.GetContext()
	now := time.Now().UTC()
	s.seedMembership("msh_raced", "mem_a", s.Today().AddDate(0, 0, -1), types.MembershipStatusActive)

	// Snapshot read by the scan before a cancellation commits
	stale, err := s.GetStores().MembershipRepo.Get(ctx, "msh_raced")
	s.NoError(err)

	current, err := s.GetStores().MembershipRepo.Get(ctx, "msh_raced")
	s.NoError(err)
	current.MarkCancelled(ctx, "left town", types.DebtActionKeep, now)
	s.NoError(s.GetStores().MembershipRepo.Update(ctx, current))

	// The scan's guarded write loses and the cancellation stands
	stale.MarkExpired(ctx, now)
	err = s.GetStores().MembershipRepo.BatchExpire(ctx, []*membership.MembershipAssignment{stale})
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	kept, err := s.GetStores().MembershipRepo.Get(ctx, "msh_raced")
	s.NoError(err)
	s.Equal(types.MembershipStatusCancelled, kept.MembershipStatus)
}

func (s *ExpirationServiceSuite) TestScanLockBlocksSecondRun() {
	ctx := s.GetContext()
	s.seedMembership("msh_old", "mem_a", s.Today().AddDate(0, 0, -1), types.MembershipStatusActive)

	_, err := s.service.RunExpirationScan(ctx, false)
	s.NoError(err)

	_, err = s.service.RunExpirationScan(ctx, false)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *ExpirationServiceSuite) TestForcedRerunIsIdempotent() {
	ctx := s.GetContext()
	s.seedMembership("msh_old", "mem_a", s.Today().AddDate(0, 0, -1), types.MembershipStatusActive)

	first, err := s.service.RunExpirationScan(ctx, false)
	s.NoError(err)
	s.Equal(1, first.Processed)

	// The candidate is already expired, so a forced re-run finds nothing.
	second, err := s.service.RunExpirationScan(ctx, true)
	s.NoError(err)
	s.Equal(0, second.Processed)
	s.Equal(0, second.Failed)
}
