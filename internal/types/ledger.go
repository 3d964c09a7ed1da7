package types

import (
	"fmt"

	"github.com/samber/lo"
)

// TransactionType represents the direction of a ledger money movement.
// Ledger amounts are always signed: income entries carry a positive amount,
// expense and refund entries carry a negative amount. Daily aggregates are
// unsigned with explicit per-category totals.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeRefund  TransactionType = "refund"
)

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) Validate() error {
	allowed := []TransactionType{
		TransactionTypeIncome,
		TransactionTypeExpense,
		TransactionTypeRefund,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid transaction type: %s", t)
	}
	return nil
}

// TransactionCategory classifies what a ledger entry was for.
type TransactionCategory string

const (
	TransactionCategoryMembership TransactionCategory = "membership"
	TransactionCategoryRefund     TransactionCategory = "refund"
	TransactionCategoryManual     TransactionCategory = "manual"
	TransactionCategoryOther      TransactionCategory = "other"
)

func (c TransactionCategory) String() string {
	return string(c)
}

func (c TransactionCategory) Validate() error {
	allowed := []TransactionCategory{
		TransactionCategoryMembership,
		TransactionCategoryRefund,
		TransactionCategoryManual,
		TransactionCategoryOther,
	}
	if !lo.Contains(allowed, c) {
		return fmt.Errorf("invalid transaction category: %s", c)
	}
	return nil
}

// TransactionStatus tracks the one permitted mutation of a ledger entry:
// completed -> refunded.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

func (s TransactionStatus) String() string {
	return string(s)
}

func (s TransactionStatus) Validate() error {
	allowed := []TransactionStatus{
		TransactionStatusCompleted,
		TransactionStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid transaction status: %s", s)
	}
	return nil
}

// PaymentMethod is how money changed hands.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodCard,
		PaymentMethodTransfer,
		PaymentMethodOther,
	}
	if !lo.Contains(allowed, m) {
		return fmt.Errorf("invalid payment method: %s", m)
	}
	return nil
}

// RecurringChargeStatus tracks the settlement of a separately-tracked
// recurring charge record.
type RecurringChargeStatus string

const (
	RecurringChargeStatusPending RecurringChargeStatus = "pending"
	RecurringChargeStatusSettled RecurringChargeStatus = "settled"
)

func (s RecurringChargeStatus) String() string {
	return string(s)
}
