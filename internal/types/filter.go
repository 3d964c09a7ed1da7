package types

import "time"

// MemberFilter narrows member listings.
type MemberFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// MembershipFilter narrows membership listings.
type MembershipFilter struct {
	MemberID      string
	Status        *MembershipStatus
	PaymentStatus *MembershipPaymentStatus
	AutoRenewal   *bool
	// EndBefore matches memberships whose end date is strictly before the
	// given civil date.
	EndBefore *time.Time
	// EndOnOrBefore matches memberships whose end date falls on or before
	// the given civil date.
	EndOnOrBefore *time.Time
}

// LedgerTransactionFilter narrows ledger entry listings.
type LedgerTransactionFilter struct {
	FromDate     *time.Time
	ToDate       *time.Time
	Type         *TransactionType
	MemberID     string
	MembershipID string
	Limit        int
	Offset       int
}
