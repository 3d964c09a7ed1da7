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

type MembershipServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        MembershipService
	paymentService PaymentService
	memberService  MemberService
	testData       struct {
		member *member.Member
	}
}

func TestMembershipService(t *testing.T) {
	suite.Run(t, new(MembershipServiceSuite))
}

func (s *MembershipServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		DB:                  s.GetDB(),
		Cache:               s.GetCache(),
		MemberRepo:          s.GetStores().MemberRepo,
		MembershipRepo:      s.GetStores().MembershipRepo,
		RecurringChargeRepo: s.GetStores().RecurringChargeRepo,
		LedgerRepo:          s.GetStores().LedgerRepo,
		ScanLockRepo:        s.GetStores().ScanLockRepo,
	}
	s.service = NewMembershipService(params)
	s.paymentService = NewPaymentService(params)
	s.memberService = NewMemberService(params)

	ctx := s.GetContext()
	s.testData.member = &member.Member{
		ID:        "mem_test_membership",
		Name:      "Carla Paz",
		TotalDebt: decimal.Zero,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.member))
}

func (s *MembershipServiceSuite) assignPending(cost int64) *dto.MembershipResponse {
	resp, err := s.service.AssignMembership(s.GetContext(), &dto.AssignMembershipRequest{
		MemberID:         s.testData.member.ID,
		ActivityName:     "Crossfit",
		Cost:             decimal.NewFromInt(cost),
		PaymentFrequency: types.PaymentFrequencyMonthly,
	})
	s.NoError(err)
	return resp
}

func (s *MembershipServiceSuite) TestAssignMembership() {
	ctx := s.GetContext()

	resp := s.assignPending(1200)
	s.Equal(types.MembershipStatusActive, resp.MembershipStatus)
	s.Equal(types.MembershipPaymentStatusPending, resp.PaymentStatus)
	s.True(resp.EndDate.After(resp.StartDate))

	// Cost entered the member's debt exactly once
	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.TotalDebt.Equal(decimal.NewFromInt(1200)))

	// A pending recurring charge tracks the assignment
	charges, err := s.GetStores().RecurringChargeRepo.ListPendingByMembership(ctx, resp.ID)
	s.NoError(err)
	s.Len(charges, 1)
	s.True(charges[0].Amount.Equal(decimal.NewFromInt(1200)))

	report, err := s.memberService.ReconcileDebt(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(report.InSync)
}

func (s *MembershipServiceSuite) TestAssignMembershipValidation() {
	ctx := s.GetContext()

	_, err := s.service.AssignMembership(ctx, &dto.AssignMembershipRequest{
		ActivityName: "Crossfit",
		Cost:         decimal.NewFromInt(100),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.AssignMembership(ctx, &dto.AssignMembershipRequest{
		MemberID:     s.testData.member.ID,
		ActivityName: "Crossfit",
		Cost:         decimal.NewFromInt(-100),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.AssignMembership(ctx, &dto.AssignMembershipRequest{
		MemberID:     "mem_missing",
		ActivityName: "Crossfit",
		Cost:         decimal.NewFromInt(100),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *MembershipServiceSuite) TestCancelPendingWithDebtCancel() {
	ctx := s.GetContext()
	assigned := s.assignPending(1000)

	resp, err := s.service.CancelMembership(ctx, assigned.ID, &dto.CancelMembershipRequest{
		DebtAction: types.DebtActionCancel,
		Reason:     "moved away",
	})
	s.NoError(err)
	s.Equal(types.MembershipStatusCancelled, resp.MembershipStatus)
	s.Equal(types.DebtActionCancel, resp.DebtAction)
	s.Equal("moved away", resp.CancelReason)
	s.NotNil(resp.CancelledAt)

	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.TotalDebt.IsZero())

	// No ledger movement for a pending cancellation
	txs, err := s.GetStores().LedgerRepo.ListTransactions(ctx, nil)
	s.NoError(err)
	s.Empty(txs)
}

func (s *MembershipServiceSuite) TestCancelPendingWithDebtKeep() {
	ctx := s.GetContext()
	assigned := s.assignPending(1000)

	resp, err := s.service.CancelMembership(ctx, assigned.ID, &dto.CancelMembershipRequest{
		DebtAction: types.DebtActionKeep,
	})
	s.NoError(err)
	s.Equal(types.MembershipStatusCancelled, resp.MembershipStatus)
	s.Equal(types.DebtActionKeep, resp.DebtAction)

	// Debt still owed
	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.TotalDebt.Equal(decimal.NewFromInt(1000)))

	report, err := s.memberService.ReconcileDebt(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(report.InSync)
}

func (s *MembershipServiceSuite) TestCancelPaidAlwaysRefunds() {
	ctx := s.GetContext()
	assigned := s.assignPending(1000)

	payResp, err := s.paymentService.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{assigned.ID},
		Amount:        decimal.NewFromInt(1000),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)

	// The requested action is keep, but a paid membership refunds regardless
	resp, err := s.service.CancelMembership(ctx, assigned.ID, &dto.CancelMembershipRequest{
		DebtAction: types.DebtActionKeep,
		Reason:     "injury",
	})
	s.NoError(err)
	s.Equal(types.MembershipStatusCancelled, resp.MembershipStatus)
	s.Equal(types.DebtActionCancel, resp.DebtAction)

	// Refund entry appended with a negative amount
	refundType := types.TransactionTypeRefund
	refunds, err := s.GetStores().LedgerRepo.ListTransactions(ctx, &types.LedgerTransactionFilter{Type: &refundType})
	s.NoError(err)
	s.Len(refunds, 1)
	s.True(refunds[0].Amount.Equal(decimal.NewFromInt(-1000)))
	s.Equal(types.TransactionCategoryRefund, refunds[0].Category)

	// Original payment entry flipped to refunded
	payment, err := s.GetStores().LedgerRepo.GetTransaction(ctx, payResp.TransactionID)
	s.NoError(err)
	s.Equal(types.TransactionStatusRefunded, payment.TxStatus)

	// Day aggregate carries the expense
	day, err := s.GetStores().LedgerRepo.GetDailyCash(ctx, s.Today().Format(types.CivilDateLayout))
	s.NoError(err)
	s.True(day.TotalExpense.Equal(decimal.NewFromInt(1000)))
	s.True(day.TotalIncome.Equal(decimal.NewFromInt(1000)))
	s.Equal(int64(2), day.TxCount)

	// Debt unchanged by the paid round trip
	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.TotalDebt.IsZero())
}

func (s *MembershipServiceSuite) TestCancelIsTerminal() {
	ctx := s.GetContext()
	assigned := s.assignPending(1000)

	_, err := s.service.CancelMembership(ctx, assigned.ID, &dto.CancelMembershipRequest{
		DebtAction: types.DebtActionCancel,
	})
	s.NoError(err)

	resp, err := s.service.CancelMembership(ctx, assigned.ID, &dto.CancelMembershipRequest{
		DebtAction: types.DebtActionCancel,
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *MembershipServiceSuite) TestCancelValidation() {
	ctx := s.GetContext()
	assigned := s.assignPending(1000)

	_, err := s.service.CancelMembership(ctx, assigned.ID, &dto.CancelMembershipRequest{
		DebtAction: types.DebtAction("forgive"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CancelMembership(ctx, "msh_missing", &dto.CancelMembershipRequest{
		DebtAction: types.DebtActionKeep,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *MembershipServiceSuite) TestListPendingMemberships() {
	ctx := s.GetContext()
	first := s.assignPending(1000)
	second := s.assignPending(500)

	_, err := s.paymentService.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{second.ID},
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)

	resp, err := s.service.ListPendingMemberships(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(first.ID, resp.Items[0].ID)

	_, err = s.service.ListPendingMemberships(ctx, "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
