package membership

import (
	"context"
	"time"

	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/shopspring/decimal"
)

// MembershipAssignment is a time-bounded grant of access to one activity,
// with its own cost and payment state, independent of the member's other
// memberships.
//
// State machine: active -> expired (time based, may spawn a linked
// successor); active|expired -> cancelled (manual, terminal).
type MembershipAssignment struct {
	ID           string `json:"id"`
	MemberID     string `json:"member_id"`
	ActivityID   string `json:"activity_id"`
	ActivityName string `json:"activity_name"`

	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Cost      decimal.Decimal `json:"cost"`

	MembershipStatus types.MembershipStatus        `json:"membership_status"`
	PaymentStatus    types.MembershipPaymentStatus `json:"payment_status"`
	PaymentFrequency types.PaymentFrequency        `json:"payment_frequency"`
	CustomPeriodDays int                           `json:"custom_period_days,omitempty"`

	PaidAmount    decimal.Decimal     `json:"paid_amount"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	PaymentMethod types.PaymentMethod `json:"payment_method,omitempty"`

	SessionsAttended int `json:"sessions_attended"`
	SessionsTotal    int `json:"sessions_total"`

	AutoRenewal          bool   `json:"auto_renewal"`
	RenewedAutomatically bool   `json:"renewed_automatically"`
	PreviousMembershipID string `json:"previous_membership_id,omitempty"`
	// RenewalKey is the deterministic idempotency key stamped on a renewal
	// successor, letting a re-entered renewal run detect it.
	RenewalKey string `json:"renewal_key,omitempty"`

	ExpiredAt *time.Time `json:"expired_at,omitempty"`

	CancelledAt  *time.Time       `json:"cancelled_at,omitempty"`
	CancelledBy  string           `json:"cancelled_by,omitempty"`
	CancelReason string           `json:"cancel_reason,omitempty"`
	DebtAction   types.DebtAction `json:"debt_action,omitempty"`

	// Version guards concurrent state transitions with optimistic locking.
	Version int64 `json:"version"`
	types.BaseModel
}

func (m *MembershipAssignment) Validate() error {
	if m.MemberID == "" {
		return ierr.NewError("membership must belong to a member").
			WithHint("Member ID is required").
			Mark(ierr.ErrValidation)
	}
	if m.Cost.IsNegative() {
		return ierr.NewError("membership cost cannot be negative").
			WithHint("Membership cost cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if err := m.MembershipStatus.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid membership status").
			Mark(ierr.ErrValidation)
	}
	if err := m.PaymentStatus.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid payment status").
			Mark(ierr.ErrValidation)
	}
	if !m.EndDate.IsZero() && m.EndDate.Before(m.StartDate) {
		return ierr.NewError("membership end date precedes start date").
			WithHint("End date must not precede start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPending reports whether the assignment still owes its cost.
func (m *MembershipAssignment) IsPending() bool {
	return m.PaymentStatus == types.MembershipPaymentStatusPending
}

// IsCancelled reports whether the assignment is in its terminal state.
func (m *MembershipAssignment) IsCancelled() bool {
	return m.MembershipStatus == types.MembershipStatusCancelled
}

// MarkPaid records a completed payment against the assignment.
func (m *MembershipAssignment) MarkPaid(ctx context.Context, amount decimal.Decimal, method types.PaymentMethod, at time.Time) {
	m.PaymentStatus = types.MembershipPaymentStatusPaid
	m.PaidAmount = amount
	m.PaidAt = &at
	m.PaymentMethod = method
	m.Touch(ctx)
}

// MarkExpired flips an active assignment to expired.
func (m *MembershipAssignment) MarkExpired(ctx context.Context, at time.Time) {
	m.MembershipStatus = types.MembershipStatusExpired
	m.ExpiredAt = &at
	m.Touch(ctx)
}

// MarkCancelled moves the assignment to its terminal state, recording the
// operator, reason and the debt action actually applied.
func (m *MembershipAssignment) MarkCancelled(ctx context.Context, reason string, applied types.DebtAction, at time.Time) {
	m.MembershipStatus = types.MembershipStatusCancelled
	m.CancelledAt = &at
	m.CancelledBy = types.GetActorID(ctx)
	m.CancelReason = reason
	m.DebtAction = applied
	m.Touch(ctx)
}
