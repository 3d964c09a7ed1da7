package dto

import (
	"github.com/shopspring/decimal"

	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/gymledger/gymledger/internal/validator"
)

type RegisterPaymentRequest struct {
	MemberID      string              `json:"member_id" validate:"required"`
	MembershipIDs []string            `json:"membership_ids" validate:"required,min=1"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentDate   string              `json:"payment_date,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

func (r *RegisterPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	for _, id := range r.MembershipIDs {
		if id == "" {
			return ierr.NewError("membership id cannot be empty").
				WithHint("Membership IDs cannot be empty").
				Mark(ierr.ErrValidation)
		}
	}
	return r.PaymentMethod.Validate()
}

type RegisterPaymentResponse struct {
	TransactionID string          `json:"transaction_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	RemainingDebt decimal.Decimal `json:"remaining_debt"`
}
