package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/gymledger/gymledger/internal/api/dto"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/testutil"
	"github.com/gymledger/gymledger/internal/types"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LedgerService
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewLedgerService(ServiceParams{
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

func (s *LedgerServiceSuite) record(txType types.TransactionType, amount int64, desc string) *dto.TransactionResponse {
	resp, err := s.service.RecordTransaction(s.GetContext(), &dto.RecordTransactionRequest{
		Type:          txType,
		Amount:        decimal.NewFromInt(amount),
		Description:   desc,
		PaymentMethod: types.PaymentMethodCash,
	})
	s.NoError(err)
	return resp
}

func (s *LedgerServiceSuite) TestRecordExpenseSignsNegative() {
	resp := s.record(types.TransactionTypeExpense, 300, "Equipment repair")
	s.True(resp.Amount.Equal(decimal.NewFromInt(-300)))
	s.Equal(types.TransactionCategoryManual, resp.Category)
	s.Equal(types.TransactionStatusCompleted, resp.TxStatus)
	s.NotEmpty(resp.ReceiptNumber)

	day, err := s.service.GetDailyCash(s.GetContext(), s.Today().Format(types.CivilDateLayout))
	s.NoError(err)
	s.True(day.TotalExpense.Equal(decimal.NewFromInt(300)))
	s.True(day.TotalIncome.IsZero())
	s.True(day.NetAmount.Equal(decimal.NewFromInt(-300)))
	s.Equal(int64(1), day.TxCount)
}

func (s *LedgerServiceSuite) TestRecordIncomeStaysPositive() {
	resp := s.record(types.TransactionTypeIncome, 500, "Day pass")
	s.True(resp.Amount.Equal(decimal.NewFromInt(500)))

	day, err := s.service.GetDailyCash(s.GetContext(), s.Today().Format(types.CivilDateLayout))
	s.NoError(err)
	s.True(day.TotalIncome.Equal(decimal.NewFromInt(500)))
	s.True(day.NetAmount.Equal(decimal.NewFromInt(500)))
	// A manual entry is not membership revenue
	s.True(day.MembershipIncome.IsZero())
}

func (s *LedgerServiceSuite) TestRecordTransactionValidation() {
	ctx := s.GetContext()
	testCases := []struct {
		name string
		req  *dto.RecordTransactionRequest
	}{
		{
			name: "zero amount",
			req: &dto.RecordTransactionRequest{
				Type:          types.TransactionTypeIncome,
				Amount:        decimal.Zero,
				Description:   "nothing",
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "negative amount",
			req: &dto.RecordTransactionRequest{
				Type:          types.TransactionTypeExpense,
				Amount:        decimal.NewFromInt(-100),
				Description:   "pre-signed",
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "missing description",
			req: &dto.RecordTransactionRequest{
				Type:          types.TransactionTypeIncome,
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: types.PaymentMethodCash,
			},
		},
		{
			name: "unknown type",
			req: &dto.RecordTransactionRequest{
				Type:          types.TransactionType("loan"),
				Amount:        decimal.NewFromInt(100),
				Description:   "loan",
				PaymentMethod: types.PaymentMethodCash,
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, err := s.service.RecordTransaction(ctx, tc.req)
			s.Error(err)
			s.Nil(resp)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *LedgerServiceSuite) TestGetDailyCashEmptyDay() {
	_, err := s.service.GetDailyCash(s.GetContext(), "2031-01-15")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetDailyCash(s.GetContext(), "not-a-date")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceSuite) TestMarkRefundedIsTerminal() {
	ctx := s.GetContext()
	recorded := s.record(types.TransactionTypeIncome, 500, "Day pass")

	resp, err := s.service.MarkRefunded(ctx, recorded.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusRefunded, resp.TxStatus)

	stored, err := s.service.GetTransaction(ctx, recorded.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusRefunded, stored.TxStatus)

	_, err = s.service.MarkRefunded(ctx, recorded.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *LedgerServiceSuite) TestListTransactionsFilters() {
	ctx := s.GetContext()
	s.record(types.TransactionTypeIncome, 500, "Day pass")
	s.record(types.TransactionTypeExpense, 200, "Cleaning supplies")

	all, err := s.service.ListTransactions(ctx, &dto.ListTransactionsRequest{})
	s.NoError(err)
	s.Equal(2, all.Total)

	expenses, err := s.service.ListTransactions(ctx, &dto.ListTransactionsRequest{
		Type: string(types.TransactionTypeExpense),
	})
	s.NoError(err)
	s.Equal(1, expenses.Total)
	s.Equal("Cleaning supplies", expenses.Items[0].Description)

	none, err := s.service.ListTransactions(ctx, &dto.ListTransactionsRequest{
		FromDate: "2031-01-01",
	})
	s.NoError(err)
	s.Equal(0, none.Total)

	_, err = s.service.ListTransactions(ctx, &dto.ListTransactionsRequest{
		Type: "loan",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
