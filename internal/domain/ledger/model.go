package ledger

import (
	"time"

	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of one money movement and the audit
// trail for every cash-affecting operation. Amounts are signed: income is
// positive, expense and refund entries are negative. The only permitted
// mutation after creation is TxStatus completed -> refunded.
type Transaction struct {
	ID            string                    `json:"id"`
	Type          types.TransactionType     `json:"type"`
	Category      types.TransactionCategory `json:"category"`
	Amount        decimal.Decimal           `json:"amount"`
	Currency      string                    `json:"currency"`
	Description   string                    `json:"description"`
	PaymentMethod types.PaymentMethod       `json:"payment_method"`
	ReceiptNumber string                    `json:"receipt_number"`
	TxStatus      types.TransactionStatus   `json:"tx_status"`
	MemberID      string                    `json:"member_id,omitempty"`
	MembershipID  string                    `json:"membership_id,omitempty"`
	// Date is the civil day the movement applies to, which keys the daily
	// aggregate it rolls into.
	Date time.Time `json:"date"`
	types.BaseModel
}

func (t *Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid transaction type").
			Mark(ierr.ErrValidation)
	}
	if err := t.Category.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid transaction category").
			Mark(ierr.ErrValidation)
	}
	if t.Amount.IsZero() {
		return ierr.NewError("transaction amount cannot be zero").
			WithHint("Amount must be non-zero").
			Mark(ierr.ErrValidation)
	}

	switch t.Type {
	case types.TransactionTypeIncome:
		if t.Amount.IsNegative() {
			return ierr.NewError("income amount must be positive").
				WithHint("Income entries carry a positive amount").
				Mark(ierr.ErrValidation)
		}
	case types.TransactionTypeExpense, types.TransactionTypeRefund:
		if t.Amount.IsPositive() {
			return ierr.NewError("expense amount must be negative").
				WithHint("Expense and refund entries carry a negative amount").
				Mark(ierr.ErrValidation)
		}
	}

	if t.Date.IsZero() {
		return ierr.NewError("transaction date is required").
			WithHint("Transaction date is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DateKey returns the canonical day key the movement rolls into.
func (t *Transaction) DateKey(loc *time.Location) string {
	return types.CivilDateKey(t.Date, loc)
}
