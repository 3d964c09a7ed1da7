package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/gymledger/gymledger/internal/validator"
)

type AssignMembershipRequest struct {
	MemberID         string                 `json:"member_id" validate:"required"`
	ActivityID       string                 `json:"activity_id,omitempty"`
	ActivityName     string                 `json:"activity_name" validate:"required"`
	Cost             decimal.Decimal        `json:"cost"`
	StartDate        string                 `json:"start_date,omitempty"`
	EndDate          string                 `json:"end_date,omitempty"`
	PaymentFrequency types.PaymentFrequency `json:"payment_frequency,omitempty"`
	CustomPeriodDays int                    `json:"custom_period_days,omitempty"`
	SessionsTotal    int                    `json:"sessions_total,omitempty"`
	AutoRenewal      bool                   `json:"auto_renewal"`
}

func (r *AssignMembershipRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Cost.IsNegative() {
		return ierr.NewError("membership cost cannot be negative").
			WithHint("Membership cost cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if r.PaymentFrequency != "" {
		if err := r.PaymentFrequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToMembership builds the pending assignment. Dates are resolved against loc;
// a missing start date anchors the period today, a missing end date is
// derived from the payment frequency.
func (r *AssignMembershipRequest) ToMembership(ctx context.Context, loc *time.Location) (*membership.MembershipAssignment, error) {
	start := types.DateOnly(time.Now(), loc)
	if r.StartDate != "" {
		parsed, err := types.ParseCivilDate(r.StartDate, loc)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Start date is not a valid date").
				Mark(ierr.ErrValidation)
		}
		start = parsed
	}

	var end time.Time
	if r.EndDate != "" {
		parsed, err := types.ParseCivilDate(r.EndDate, loc)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("End date is not a valid date").
				Mark(ierr.ErrValidation)
		}
		end = parsed
	} else if r.PaymentFrequency != "" {
		derived, err := types.NextPeriodEnd(start, r.PaymentFrequency, r.CustomPeriodDays)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Could not derive the end date from the payment frequency").
				Mark(ierr.ErrValidation)
		}
		end = derived
	}

	return &membership.MembershipAssignment{
		ID:               types.GenerateUUIDWithPrefix(types.UUIDPrefixMembership),
		MemberID:         r.MemberID,
		ActivityID:       r.ActivityID,
		ActivityName:     r.ActivityName,
		StartDate:        start,
		EndDate:          end,
		Cost:             r.Cost,
		MembershipStatus: types.MembershipStatusActive,
		PaymentStatus:    types.MembershipPaymentStatusPending,
		PaymentFrequency: r.PaymentFrequency,
		CustomPeriodDays: r.CustomPeriodDays,
		PaidAmount:       decimal.Zero,
		SessionsTotal:    r.SessionsTotal,
		AutoRenewal:      r.AutoRenewal,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}, nil
}

type CancelMembershipRequest struct {
	DebtAction types.DebtAction `json:"debt_action" validate:"required"`
	Reason     string           `json:"reason,omitempty"`
}

func (r *CancelMembershipRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.DebtAction.Validate()
}

type MembershipResponse struct {
	*membership.MembershipAssignment
}

func NewMembershipResponse(m *membership.MembershipAssignment) *MembershipResponse {
	return &MembershipResponse{MembershipAssignment: m}
}

type ListMembershipsResponse struct {
	Items []*MembershipResponse `json:"items"`
	Total int                   `json:"total"`
}

func NewListMembershipsResponse(ms []*membership.MembershipAssignment) *ListMembershipsResponse {
	items := make([]*MembershipResponse, 0, len(ms))
	for _, m := range ms {
		items = append(items, NewMembershipResponse(m))
	}
	return &ListMembershipsResponse{Items: items, Total: len(items)}
}
