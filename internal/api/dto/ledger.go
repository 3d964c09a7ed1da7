package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymledger/gymledger/internal/domain/ledger"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/gymledger/gymledger/internal/validator"
)

// RecordTransactionRequest carries an operator-entered ledger entry. Amount
// is submitted as a positive magnitude; the service applies the sign the
// entry type demands.
type RecordTransactionRequest struct {
	Type          types.TransactionType     `json:"type" validate:"required"`
	Category      types.TransactionCategory `json:"category,omitempty"`
	Amount        decimal.Decimal           `json:"amount"`
	Description   string                    `json:"description" validate:"required"`
	PaymentMethod types.PaymentMethod       `json:"payment_method" validate:"required"`
	Date          string                    `json:"date,omitempty"`
	MemberID      string                    `json:"member_id,omitempty"`
	MembershipID  string                    `json:"membership_id,omitempty"`
}

func (r *RecordTransactionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if r.Category != "" {
		if err := r.Category.Validate(); err != nil {
			return err
		}
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("transaction amount must be positive").
			WithHint("Submit the amount as a positive value").
			Mark(ierr.ErrValidation)
	}
	return r.PaymentMethod.Validate()
}

// ToTransaction builds the signed ledger entry for loc's civil calendar.
func (r *RecordTransactionRequest) ToTransaction(ctx context.Context, currency string, loc *time.Location) (*ledger.Transaction, error) {
	date := types.DateOnly(time.Now(), loc)
	if r.Date != "" {
		parsed, err := types.ParseCivilDate(r.Date, loc)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Transaction date is not a valid date").
				Mark(ierr.ErrValidation)
		}
		date = parsed
	}

	amount := r.Amount
	if r.Type != types.TransactionTypeIncome {
		amount = amount.Neg()
	}

	category := r.Category
	if category == "" {
		category = types.TransactionCategoryManual
	}

	return &ledger.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUIDPrefixLedgerTransaction),
		Type:          r.Type,
		Category:      category,
		Amount:        amount,
		Currency:      currency,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		ReceiptNumber: types.GenerateReceiptNumber(),
		TxStatus:      types.TransactionStatusCompleted,
		MemberID:      r.MemberID,
		MembershipID:  r.MembershipID,
		Date:          date,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}, nil
}

type TransactionResponse struct {
	*ledger.Transaction
}

func NewTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	return &TransactionResponse{Transaction: t}
}

type ListTransactionsRequest struct {
	FromDate     string `form:"from_date"`
	ToDate       string `form:"to_date"`
	Type         string `form:"type"`
	MemberID     string `form:"member_id"`
	MembershipID string `form:"membership_id"`
}

// ToFilter resolves the query parameters into a repository filter.
func (r *ListTransactionsRequest) ToFilter(loc *time.Location) (*types.LedgerTransactionFilter, error) {
	filter := &types.LedgerTransactionFilter{
		MemberID:     r.MemberID,
		MembershipID: r.MembershipID,
	}
	if r.FromDate != "" {
		from, err := types.ParseCivilDate(r.FromDate, loc)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("from_date is not a valid date").
				Mark(ierr.ErrValidation)
		}
		filter.FromDate = &from
	}
	if r.ToDate != "" {
		to, err := types.ParseCivilDate(r.ToDate, loc)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("to_date is not a valid date").
				Mark(ierr.ErrValidation)
		}
		filter.ToDate = &to
	}
	if r.Type != "" {
		t := types.TransactionType(r.Type)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		filter.Type = &t
	}
	return filter, nil
}

type ListTransactionsResponse struct {
	Items []*TransactionResponse `json:"items"`
	Total int                    `json:"total"`
}

func NewListTransactionsResponse(ts []*ledger.Transaction) *ListTransactionsResponse {
	items := make([]*TransactionResponse, 0, len(ts))
	for _, t := range ts {
		items = append(items, NewTransactionResponse(t))
	}
	return &ListTransactionsResponse{Items: items, Total: len(items)}
}

type DailyCashResponse struct {
	*ledger.DailyCash
	NetAmount decimal.Decimal `json:"net_amount"`
}

func NewDailyCashResponse(d *ledger.DailyCash) *DailyCashResponse {
	return &DailyCashResponse{
		DailyCash: d,
		NetAmount: d.TotalIncome.Sub(d.TotalExpense),
	}
}
