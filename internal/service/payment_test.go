package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/testutil"
	"github.com/gymledger/gymledger/internal/types"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       PaymentService
	memberService MemberService
	testData      struct {
		member *member.Member
		yoga   *membership.MembershipAssignment
		boxing *membership.MembershipAssignment
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
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
	s.service = NewPaymentService(params)
	s.memberService = NewMemberService(params)
	s.setupTestData()
}

func (s *PaymentServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.member = &member.Member{
		ID:        "mem_test_payment",
		Name:      "Ana Torres",
		TotalDebt: decimal.NewFromInt(2000),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.member))

	start := s.Today().AddDate(0, -1, 0)
	s.testData.yoga = &membership.MembershipAssignment{
		ID:               "msh_test_yoga",
		MemberID:         s.testData.member.ID,
		ActivityName:     "Yoga",
		StartDate:        start,
		EndDate:          start.AddDate(0, 1, 0),
		Cost:             decimal.NewFromInt(1500),
		MembershipStatus: types.MembershipStatusActive,
		PaymentStatus:    types.MembershipPaymentStatusPending,
		PaymentFrequency: types.PaymentFrequencyMonthly,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MembershipRepo.Create(ctx, s.testData.yoga))

	s.testData.boxing = &membership.MembershipAssignment{
		ID:               "msh_test_boxing",
		MemberID:         s.testData.member.ID,
		ActivityName:     "Boxing",
		StartDate:        start,
		EndDate:          start.AddDate(0, 1, 0),
		Cost:             decimal.NewFromInt(500),
		MembershipStatus: types.MembershipStatusActive,
		PaymentStatus:    types.MembershipPaymentStatusPending,
		PaymentFrequency: types.PaymentFrequencyMonthly,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MembershipRepo.Create(ctx, s.testData.boxing))
}

func (s *PaymentServiceSuite) TestRegisterPaymentSingleMembership() {
	ctx := s.GetContext()

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)
	s.NotEmpty(resp.TransactionID)
	s.Contains(resp.ReceiptNumber, "RC-")
	s.True(resp.RemainingDebt.Equal(decimal.NewFromInt(500)))

	// Membership flipped to paid
	paid, err := s.GetStores().MembershipRepo.Get(ctx, s.testData.yoga.ID)
	s.NoError(err)
	s.Equal(types.MembershipPaymentStatusPaid, paid.PaymentStatus)
	s.NotNil(paid.PaidAt)
	s.True(paid.PaidAmount.Equal(decimal.NewFromInt(1500)))
	s.Equal(types.PaymentMethodCash, paid.PaymentMethod)

	// Debt reduced
	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.TotalDebt.Equal(decimal.NewFromInt(500)))

	// One income entry with a single-line description
	tx, err := s.GetStores().LedgerRepo.GetTransaction(ctx, resp.TransactionID)
	s.NoError(err)
	s.Equal(types.TransactionTypeIncome, tx.Type)
	s.Equal(types.TransactionCategoryMembership, tx.Category)
	s.True(tx.Amount.Equal(decimal.NewFromInt(1500)))
	s.Equal(s.testData.yoga.ID, tx.MembershipID)
	s.Contains(tx.Description, "Yoga")
	s.NotContains(tx.Description, "\n")

	// Daily aggregate rolled up
	day, err := s.GetStores().LedgerRepo.GetDailyCash(ctx, s.Today().Format(types.CivilDateLayout))
	s.NoError(err)
	s.True(day.TotalIncome.Equal(decimal.NewFromInt(1500)))
	s.True(day.MembershipIncome.Equal(decimal.NewFromInt(1500)))
	s.True(day.TotalExpense.IsZero())
	s.Equal(int64(1), day.TxCount)
}

func (s *PaymentServiceSuite) TestRegisterPaymentItemizedDescription() {
	ctx := s.GetContext()

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID, s.testData.boxing.ID},
		Amount:        decimal.NewFromInt(2000),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	tx, err := s.GetStores().LedgerRepo.GetTransaction(ctx, resp.TransactionID)
	s.NoError(err)
	s.Contains(tx.Description, "- Yoga")
	s.Contains(tx.Description, "- Boxing")
	s.Contains(tx.Description, "Total:")
	s.Empty(tx.MembershipID)

	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.TotalDebt.IsZero())
}

func (s *PaymentServiceSuite) TestRegisterPaymentValidation() {
	ctx := s.GetContext()

	testCases := []struct {
		name string
		req  *dto.RegisterPaymentRequest
	}{
		{
			name: "zero amount",
			req: &dto.RegisterPaymentRequest{
				MemberID:      s.testData.member.ID,
				MembershipIDs: []string{s.testData.yoga.ID},
				Amount:        decimal.Zero,
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "negative amount",
			req: &dto.RegisterPaymentRequest{
				MemberID:      s.testData.member.ID,
				MembershipIDs: []string{s.testData.yoga.ID},
				Amount:        decimal.NewFromInt(-100),
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "missing member id",
			req: &dto.RegisterPaymentRequest{
				MembershipIDs: []string{s.testData.yoga.ID},
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "no membership ids",
			req: &dto.RegisterPaymentRequest{
				MemberID:      s.testData.member.ID,
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "empty membership id",
			req: &dto.RegisterPaymentRequest{
				MemberID:      s.testData.member.ID,
				MembershipIDs: []string{""},
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "unknown payment method",
			req: &dto.RegisterPaymentRequest{
				MemberID:      s.testData.member.ID,
				MembershipIDs: []string{s.testData.yoga.ID},
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: types.PaymentMethod("crypto"),
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, err := s.service.RegisterPayment(ctx, tc.req)
			s.Error(err)
			s.Nil(resp)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *PaymentServiceSuite) TestRegisterPaymentMemberNotFound() {
	resp, err := s.service.RegisterPayment(s.GetContext(), &dto.RegisterPaymentRequest{
		MemberID:      "mem_missing",
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestRegisterPaymentMembershipNotFound() {
	resp, err := s.service.RegisterPayment(s.GetContext(), &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{"msh_missing"},
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestRegisterPaymentAlreadyPaid() {
	ctx := s.GetContext()

	_, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestRegisterPaymentAnotherMembersMembership() {
	ctx := s.GetContext()

	other := &member.Member{
		ID:        "mem_other",
		Name:      "Luis Vega",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, other))

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      other.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestRegisterPaymentDebtFloorsAtZero() {
	ctx := s.GetContext()

	// Cached debt lower than the payment amount
	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	m.TotalDebt = decimal.NewFromInt(1000)
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)
	s.True(resp.RemainingDebt.IsZero())

	updated, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(updated.TotalDebt.IsZero())
}

func (s *PaymentServiceSuite) TestRegisterPaymentSettlesRecurringCharges() {
	ctx := s.GetContext()

	charge := &membership.RecurringCharge{
		ID:           "rch_test_yoga",
		MembershipID: s.testData.yoga.ID,
		MemberID:     s.testData.member.ID,
		Amount:       s.testData.yoga.Cost,
		ChargeStatus: types.RecurringChargeStatusPending,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().RecurringChargeRepo.Create(ctx, charge))

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodTransfer,
	})
	s.NoError(err)

	charges := s.GetStores().RecurringChargeRepo.(*testutil.InMemoryRecurringChargeStore).Charges()
	s.Len(charges, 1)
	s.Equal(types.RecurringChargeStatusSettled, charges[0].ChargeStatus)
	s.Equal(resp.TransactionID, charges[0].SettledTxID)
	s.NotNil(charges[0].SettledAt)
}

func (s *PaymentServiceSuite) TestRegisterPaymentCustomDate() {
	ctx := s.GetContext()
	paymentDate := s.Today().AddDate(0, 0, -3)

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
		PaymentDate:   paymentDate.Format(types.CivilDateLayout),
	})
	s.NoError(err)

	tx, err := s.GetStores().LedgerRepo.GetTransaction(ctx, resp.TransactionID)
	s.NoError(err)
	s.True(tx.Date.Equal(paymentDate))

	// The aggregate lands on the payment date, not today
	day, err := s.GetStores().LedgerRepo.GetDailyCash(ctx, paymentDate.Format(types.CivilDateLayout))
	s.NoError(err)
	s.True(day.TotalIncome.Equal(decimal.NewFromInt(1500)))
}

func (s *PaymentServiceSuite) TestRegisterPaymentNotesAppended() {
	ctx := s.GetContext()

	resp, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
		Notes:         "paid in two bills",
	})
	s.NoError(err)

	tx, err := s.GetStores().LedgerRepo.GetTransaction(ctx, resp.TransactionID)
	s.NoError(err)
	s.Contains(tx.Description, "Notes: paid in two bills")
}

func (s *PaymentServiceSuite) TestRegisterPaymentKeepsDebtReconciled() {
	ctx := s.GetContext()

	_, err := s.service.RegisterPayment(ctx, &dto.RegisterPaymentRequest{
		MemberID:      s.testData.member.ID,
		MembershipIDs: []string{s.testData.yoga.ID},
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)

	report, err := s.memberService.ReconcileDebt(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(report.InSync)
	s.True(report.RecomputedDebt.Equal(decimal.NewFromInt(500)))
	s.Equal(1, report.PendingCount)
}
