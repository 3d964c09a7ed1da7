package membership

import (
	"context"
	"time"

	"github.com/gymledger/gymledger/internal/types"
	"github.com/shopspring/decimal"
)

// RecurringCharge is a separately-tracked pending charge referencing a
// membership assignment. Settlement after a payment is best-effort and
// eventually consistent; the ledger remains the source of truth.
type RecurringCharge struct {
	ID           string                      `json:"id"`
	MembershipID string                      `json:"membership_id"`
	MemberID     string                      `json:"member_id"`
	Amount       decimal.Decimal             `json:"amount"`
	ChargeStatus types.RecurringChargeStatus `json:"charge_status"`
	SettledTxID  string                      `json:"settled_tx_id,omitempty"`
	SettledAt    *time.Time                  `json:"settled_at,omitempty"`
	types.BaseModel
}

// RecurringChargeRepository tracks the recurring charge records reconciled
// after payments.
type RecurringChargeRepository interface {
	Create(ctx context.Context, c *RecurringCharge) error
	ListPendingByMembership(ctx context.Context, membershipID string) ([]*RecurringCharge, error)
	Update(ctx context.Context, c *RecurringCharge) error
}
