package types

import (
	"fmt"

	"github.com/samber/lo"
)

// MembershipStatus represents the lifecycle state of a membership assignment.
// Transitions: active -> expired (time based), active|expired -> cancelled
// (manual, terminal).
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusExpired   MembershipStatus = "expired"
	MembershipStatusCancelled MembershipStatus = "cancelled"
)

func (s MembershipStatus) String() string {
	return string(s)
}

func (s MembershipStatus) Validate() error {
	allowed := []MembershipStatus{
		MembershipStatusActive,
		MembershipStatusExpired,
		MembershipStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid membership status: %s", s)
	}
	return nil
}

// MembershipPaymentStatus represents the payment state of a membership
// assignment.
type MembershipPaymentStatus string

const (
	MembershipPaymentStatusPaid    MembershipPaymentStatus = "paid"
	MembershipPaymentStatusPending MembershipPaymentStatus = "pending"
	MembershipPaymentStatusPartial MembershipPaymentStatus = "partial"
)

func (s MembershipPaymentStatus) String() string {
	return string(s)
}

func (s MembershipPaymentStatus) Validate() error {
	allowed := []MembershipPaymentStatus{
		MembershipPaymentStatusPaid,
		MembershipPaymentStatusPending,
		MembershipPaymentStatusPartial,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid membership payment status: %s", s)
	}
	return nil
}

// DebtAction is the operator's choice of what happens to a pending debt when
// a membership is cancelled.
type DebtAction string

const (
	DebtActionKeep   DebtAction = "keep"
	DebtActionCancel DebtAction = "cancel"
)

func (a DebtAction) String() string {
	return string(a)
}

func (a DebtAction) Validate() error {
	allowed := []DebtAction{DebtActionKeep, DebtActionCancel}
	if !lo.Contains(allowed, a) {
		return fmt.Errorf("invalid debt action: %s", a)
	}
	return nil
}

// PaymentFrequency is the billing cadence of a membership assignment.
type PaymentFrequency string

const (
	PaymentFrequencyMonthly   PaymentFrequency = "monthly"
	PaymentFrequencyQuarterly PaymentFrequency = "quarterly"
	PaymentFrequencyYearly    PaymentFrequency = "yearly"
	PaymentFrequencyCustom    PaymentFrequency = "custom"
)

func (f PaymentFrequency) String() string {
	return string(f)
}

func (f PaymentFrequency) Validate() error {
	allowed := []PaymentFrequency{
		PaymentFrequencyMonthly,
		PaymentFrequencyQuarterly,
		PaymentFrequencyYearly,
		PaymentFrequencyCustom,
	}
	if !lo.Contains(allowed, f) {
		return fmt.Errorf("invalid payment frequency: %s", f)
	}
	return nil
}
