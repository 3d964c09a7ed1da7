package member

import (
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/shopspring/decimal"
)

// Member represents a gym member. TotalDebt is a cached money value kept
// equal to the sum of the member's currently-pending membership costs; it is
// mutated only by the payment registrar, the cancellation workflow and the
// auto-renewal processor, and never goes negative.
type Member struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	Metadata  types.Metadata  `json:"metadata,omitempty"`
	// Version guards concurrent debt updates with optimistic locking.
	Version int64 `json:"version"`
	types.BaseModel
}

func (m *Member) Validate() error {
	if m.Name == "" {
		return ierr.NewError("member name is required").
			WithHint("Member name is required").
			Mark(ierr.ErrValidation)
	}
	if m.TotalDebt.IsNegative() {
		return ierr.NewError("member debt cannot be negative").
			WithHint("Member debt cannot be negative").
			WithReportableDetails(map[string]any{
				"total_debt": m.TotalDebt,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AddDebt increases the cached debt counter.
func (m *Member) AddDebt(amount decimal.Decimal) {
	m.TotalDebt = m.TotalDebt.Add(amount)
}

// ReduceDebt decreases the cached debt counter, floored at zero.
func (m *Member) ReduceDebt(amount decimal.Decimal) {
	m.TotalDebt = decimal.Max(decimal.Zero, m.TotalDebt.Sub(amount))
}
