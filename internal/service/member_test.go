package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/domain/member"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/testutil"
	"github.com/gymledger/gymledger/internal/types"
)

type MemberServiceSuite struct {
	testutil.BaseServiceTestSuite
	service MemberService
}

func TestMemberService(t *testing.T) {
	suite.Run(t, new(MemberServiceSuite))
}

func (s *MemberServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewMemberService(ServiceParams{
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

func (s *MemberServiceSuite) TestCreateMember() {
	ctx := s.GetContext()

	resp, err := s.service.CreateMember(ctx, &dto.CreateMemberRequest{
		Name:  "Lucia Gomez",
		Email: "lucia@example.com",
		Phone: "555-0101",
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("Lucia Gomez", resp.Name)
	s.True(resp.TotalDebt.IsZero())

	fetched, err := s.service.GetMember(ctx, resp.ID)
	s.NoError(err)
	s.Equal(resp.ID, fetched.ID)
	s.Equal("lucia@example.com", fetched.Email)
}

func (s *MemberServiceSuite) TestCreateMemberValidation() {
	ctx := s.GetContext()

	_, err := s.service.CreateMember(ctx, &dto.CreateMemberRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateMember(ctx, &dto.CreateMemberRequest{
		Name:  "Lucia Gomez",
		Email: "not-an-email",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *MemberServiceSuite) TestGetMemberNotFound() {
	_, err := s.service.GetMember(s.GetContext(), "mem_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *MemberServiceSuite) TestListMembers() {
	ctx := s.GetContext()
	for _, name := range []string{"Lucia Gomez", "Pedro Ruiz"} {
		_, err := s.service.CreateMember(ctx, &dto.CreateMemberRequest{Name: name})
		s.NoError(err)
	}

	resp, err := s.service.ListMembers(ctx, nil)
	s.NoError(err)
	s.Equal(2, resp.Total)
}

func (s *MemberServiceSuite) TestReconcileDebtDetectsDrift() {
	ctx := s.GetContext()

	// A member whose cached counter no longer matches their memberships,
	// as after a partial write from a crashed process.
	m := &member.Member{
		ID:        "mem_drifted",
		Name:      "Marta Silva",
		TotalDebt: decimal.NewFromInt(900),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, m))

	report, err := s.service.ReconcileDebt(ctx, m.ID)
	s.NoError(err)
	s.False(report.InSync)
	s.True(report.CachedDebt.Equal(decimal.NewFromInt(900)))
	s.True(report.RecomputedDebt.IsZero())
	s.Equal(0, report.PendingCount)
}
