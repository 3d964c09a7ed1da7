package ledger

import (
	"context"

	"github.com/gymledger/gymledger/internal/types"
	"github.com/shopspring/decimal"
)

// DailyCash is the per-day rollup of a gym's ledger entries. One record per
// gym per civil date, created zeroed on the first movement of the day and
// never deleted. Totals are unsigned and additive, split by explicit
// category; they only stop growing when the day rolls over.
type DailyCash struct {
	// Date is the canonical YYYY-MM-DD key.
	Date             string          `json:"date"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	MembershipIncome decimal.Decimal `json:"membership_income"`
	TxCount          int64           `json:"tx_count"`
	// Version guards the read-modify-write cycle with optimistic locking.
	Version int64 `json:"version"`
	types.BaseModel
}

// NewDailyCash returns the zeroed aggregate for a day's first movement.
func NewDailyCash(ctx context.Context, date string) *DailyCash {
	return &DailyCash{
		Date:             date,
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		MembershipIncome: decimal.Zero,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

// Apply rolls one ledger entry into the aggregate. Signed ledger amounts map
// to unsigned category totals.
func (d *DailyCash) Apply(t *Transaction) {
	switch t.Type {
	case types.TransactionTypeIncome:
		d.TotalIncome = d.TotalIncome.Add(t.Amount)
		if t.Category == types.TransactionCategoryMembership {
			d.MembershipIncome = d.MembershipIncome.Add(t.Amount)
		}
	case types.TransactionTypeExpense, types.TransactionTypeRefund:
		d.TotalExpense = d.TotalExpense.Add(t.Amount.Abs())
	}
	d.TxCount++
}
