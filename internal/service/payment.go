package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type PaymentService interface {
	// RegisterPayment marks the selected memberships paid, reduces the
	// member's debt, appends the income ledger entry and rolls it into the
	// day's aggregate, all in one transaction. Recurring charges referencing
	// the paid memberships are settled best-effort after commit.
	RegisterPayment(ctx context.Context, req *dto.RegisterPaymentRequest) (*dto.RegisterPaymentResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) RegisterPayment(ctx context.Context, req *dto.RegisterPaymentRequest) (*dto.RegisterPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc := s.location()
	paymentDate := types.DateOnly(time.Now(), loc)
	if req.PaymentDate != "" {
		parsed, err := types.ParseCivilDate(req.PaymentDate, loc)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Payment date is not a valid date").
				Mark(ierr.ErrValidation)
		}
		paymentDate = parsed
	}

	member, err := s.MemberRepo.Get(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	memberships := make([]*membership.MembershipAssignment, 0, len(req.MembershipIDs))
	for _, id := range req.MembershipIDs {
		m, err := s.MembershipRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if m.MemberID != member.ID {
			return nil, ierr.NewError("membership belongs to another member").
				WithHintf("Membership %s does not belong to member %s", m.ID, member.ID).
				WithReportableDetails(map[string]any{
					"membership_id": m.ID,
					"member_id":     member.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		if !m.IsPending() {
			return nil, ierr.NewError("membership is not pending payment").
				WithHintf("Membership %s is not pending payment", m.ID).
				WithReportableDetails(map[string]any{
					"membership_id":  m.ID,
					"payment_status": m.PaymentStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		memberships = append(memberships, m)
	}

	entry := &ledger.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUIDPrefixLedgerTransaction),
		Type:          types.TransactionTypeIncome,
		Category:      types.TransactionCategoryMembership,
		Amount:        req.Amount,
		Currency:      s.Config.Ledger.Currency,
		Description:   withNotes(s.paymentDescription(memberships, req), req.Notes),
		PaymentMethod: req.PaymentMethod,
		ReceiptNumber: types.GenerateReceiptNumber(),
		TxStatus:      types.TransactionStatusCompleted,
		MemberID:      member.ID,
		Date:          paymentDate,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if len(memberships) == 1 {
		entry.MembershipID = memberships[0].ID
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range memberships {
			m.MarkPaid(ctx, m.Cost, req.PaymentMethod, now)
			if err := s.MembershipRepo.Update(ctx, m); err != nil {
				return err
			}
		}

		member.ReduceDebt(req.Amount)
		member.Touch(ctx)
		if err := s.MemberRepo.Update(ctx, member); err != nil {
			return err
		}

		if err := s.LedgerRepo.CreateTransaction(ctx, entry); err != nil {
			return err
		}
		return s.rollIntoDailyCash(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.settleRecurringCharges(ctx, memberships, entry.ID)

	s.Logger.Infow("registered payment",
		"transaction_id", entry.ID,
		"member_id", member.ID,
		"amount", req.Amount,
		"memberships", len(memberships))

	return &dto.RegisterPaymentResponse{
		TransactionID: entry.ID,
		ReceiptNumber: entry.ReceiptNumber,
		Amount:        req.Amount,
		RemainingDebt: member.TotalDebt,
	}, nil
}

// paymentDescription renders a single line for one membership and an
// itemized list with total for several.
func (s *paymentService) paymentDescription(memberships []*membership.MembershipAssignment, req *dto.RegisterPaymentRequest) string {
	loc := s.location()
	currency := s.Config.Ledger.Currency

	if len(memberships) == 1 {
		m := memberships[0]
		return fmt.Sprintf("Membership payment: %s (%s to %s)",
			m.ActivityName,
			types.CivilDateKey(m.StartDate, loc),
			types.CivilDateKey(m.EndDate, loc))
	}

	var b strings.Builder
	b.WriteString("Membership payment for:\n")
	for _, m := range memberships {
		b.WriteString(fmt.Sprintf("- %s (%s to %s): %s\n",
			m.ActivityName,
			types.CivilDateKey(m.StartDate, loc),
			types.CivilDateKey(m.EndDate, loc),
			types.FormatAmount(m.Cost, currency)))
	}
	b.WriteString(fmt.Sprintf("Total: %s", types.FormatAmount(req.Amount, currency)))
	return b.String()
}

func withNotes(description, notes string) string {
	if notes == "" {
		return description
	}
	return description + "\nNotes: " + notes
}

// settleRecurringCharges marks the charge records referencing the paid
// memberships settled. Best-effort: the ledger already holds the truth, so
// failures are logged and never surfaced to the caller.
func (s *paymentService) settleRecurringCharges(ctx context.Context, memberships []*membership.MembershipAssignment, txID string) {
	now := time.Now().UTC()
	for _, m := range memberships {
		charges, err := s.RecurringChargeRepo.ListPendingByMembership(ctx, m.ID)
		if err != nil {
			s.Logger.Errorw("failed to list recurring charges",
				"membership_id", m.ID, "error", err)
			continue
		}
		for _, c := range charges {
			c.ChargeStatus = types.RecurringChargeStatusSettled
			c.SettledTxID = txID
			c.SettledAt = &now
			c.Touch(ctx)
			if err := s.RecurringChargeRepo.Update(ctx, c); err != nil {
				s.Logger.Errorw("failed to settle recurring charge",
					"charge_id", c.ID, "membership_id", m.ID, "error", err)
			}
		}
	}
}
