package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/domain/ledger"
	"github.com/gymledger/gymledger/internal/domain/membership"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/types"
)

type MembershipService interface {
	AssignMembership(ctx context.Context, req *dto.AssignMembershipRequest) (*dto.MembershipResponse, error)
	GetMembership(ctx context.Context, id string) (*dto.MembershipResponse, error)
	ListPendingMemberships(ctx context.Context, memberID string) (*dto.ListMembershipsResponse, error)

	// CancelMembership moves the assignment to its terminal state, applying
	// the requested debt action and refunding a paid membership through the
	// ledger. All effects commit in one transaction.
	CancelMembership(ctx context.Context, membershipID string, req *dto.CancelMembershipRequest) (*dto.MembershipResponse, error)
}

type membershipService struct {
	ServiceParams
}

func NewMembershipService(params ServiceParams) MembershipService {
	return &membershipService{ServiceParams: params}
}

func (s *membershipService) AssignMembership(ctx context.Context, req *dto.AssignMembershipRequest) (*dto.MembershipResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.MemberRepo.Get(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	assignment, err := req.ToMembership(ctx, s.location())
	if err != nil {
		return nil, err
	}
	if err := assignment.Validate(); err != nil {
		return nil, err
	}

	// The cost enters the member's debt exactly once, here.
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.MembershipRepo.Create(ctx, assignment); err != nil {
			return err
		}

		m.AddDebt(assignment.Cost)
		m.Touch(ctx)
		if err := s.MemberRepo.Update(ctx, m); err != nil {
			return err
		}

		if assignment.Cost.IsPositive() {
			charge := &membership.RecurringCharge{
				ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixRecurringCharge),
				MembershipID: assignment.ID,
				MemberID:     m.ID,
				Amount:       assignment.Cost,
				ChargeStatus: types.RecurringChargeStatusPending,
				BaseModel:    types.GetDefaultBaseModel(ctx),
			}
			if err := s.RecurringChargeRepo.Create(ctx, charge); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("assigned membership",
		"membership_id", assignment.ID,
		"member_id", m.ID,
		"activity", assignment.ActivityName,
		"cost", assignment.Cost)
	return dto.NewMembershipResponse(assignment), nil
}

func (s *membershipService) GetMembership(ctx context.Context, id string) (*dto.MembershipResponse, error) {
	m, err := s.MembershipRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewMembershipResponse(m), nil
}

func (s *membershipService) ListPendingMemberships(ctx context.Context, memberID string) (*dto.ListMembershipsResponse, error) {
	if memberID == "" {
		return nil, ierr.NewError("member id is required").
			WithHint("Member ID is required").
			Mark(ierr.ErrValidation)
	}

	pendingStatus := types.MembershipPaymentStatusPending
	activeStatus := types.MembershipStatusActive
	memberships, err := s.MembershipRepo.List(ctx, &types.MembershipFilter{
		MemberID:      memberID,
		Status:        &activeStatus,
		PaymentStatus: &pendingStatus,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewListMembershipsResponse(memberships), nil
}

func (s *membershipService) CancelMembership(ctx context.Context, membershipID string, req *dto.CancelMembershipRequest) (*dto.MembershipResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.MembershipRepo.Get(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.IsCancelled() {
		return nil, ierr.NewError("membership is already cancelled").
			WithHint("The membership has already been cancelled").
			WithReportableDetails(map[string]any{
				"membership_id": m.ID,
				"cancelled_at":  m.CancelledAt,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	member, err := s.MemberRepo.Get(ctx, m.MemberID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	applied := req.DebtAction

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if m.PaymentStatus == types.MembershipPaymentStatusPaid {
			// A paid membership is always refunded, regardless of the
			// requested debt action.
			applied = types.DebtActionCancel
			if err := s.refundMembership(ctx, m, now); err != nil {
				return err
			}
			member.ReduceDebt(m.Cost)
		} else if applied == types.DebtActionCancel {
			member.ReduceDebt(m.Cost)
		}

		m.MarkCancelled(ctx, req.Reason, applied, now)
		if err := s.MembershipRepo.Update(ctx, m); err != nil {
			return err
		}

		member.Touch(ctx)
		return s.MemberRepo.Update(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled membership",
		"membership_id", m.ID,
		"member_id", m.MemberID,
		"debt_action", applied,
		"payment_status", m.PaymentStatus)
	return dto.NewMembershipResponse(m), nil
}

// refundMembership appends the refund ledger entry for a paid membership and
// flips its original payment entry to refunded when one can be located.
func (s *membershipService) refundMembership(ctx context.Context, m *membership.MembershipAssignment, now time.Time) error {
	refund := &ledger.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUIDPrefixLedgerTransaction),
		Type:          types.TransactionTypeRefund,
		Category:      types.TransactionCategoryRefund,
		Amount:        m.Cost.Neg(),
		Currency:      s.Config.Ledger.Currency,
		Description:   fmt.Sprintf("Refund: %s cancellation", m.ActivityName),
		PaymentMethod: m.PaymentMethod,
		ReceiptNumber: types.GenerateReceiptNumber(),
		TxStatus:      types.TransactionStatusCompleted,
		MemberID:      m.MemberID,
		MembershipID:  m.ID,
		Date:          types.DateOnly(now, s.location()),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := refund.Validate(); err != nil {
		return err
	}

	if err := s.LedgerRepo.CreateTransaction(ctx, refund); err != nil {
		return err
	}
	if err := s.rollIntoDailyCash(ctx, refund); err != nil {
		return err
	}

	incomeType := types.TransactionTypeIncome
	payments, err := s.LedgerRepo.ListTransactions(ctx, &types.LedgerTransactionFilter{
		MembershipID: m.ID,
		Type:         &incomeType,
	})
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.TxStatus != types.TransactionStatusCompleted {
			continue
		}
		if err := s.LedgerRepo.UpdateTransactionStatus(ctx, p.ID, types.TransactionStatusRefunded); err != nil {
			return err
		}
	}
	return nil
}
