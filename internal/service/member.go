package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/types"
)

type MemberService interface {
	CreateMember(ctx context.Context, req *dto.CreateMemberRequest) (*dto.MemberResponse, error)
	GetMember(ctx context.Context, id string) (*dto.MemberResponse, error)
	ListMembers(ctx context.Context, filter *types.MemberFilter) (*dto.ListMembersResponse, error)

	// ReconcileDebt recomputes the member's expected debt from their pending
	// memberships and reports it against the cached counter, read-only.
	ReconcileDebt(ctx context.Context, memberID string) (*dto.DebtReconciliationResponse, error)
}

type memberService struct {
	ServiceParams
}

func NewMemberService(params ServiceParams) MemberService {
	return &memberService{ServiceParams: params}
}

func (s *memberService) CreateMember(ctx context.Context, req *dto.CreateMemberRequest) (*dto.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := req.ToMember(ctx)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.MemberRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.Logger.Infow("created member", "member_id", m.ID)
	return dto.NewMemberResponse(m), nil
}

func (s *memberService) GetMember(ctx context.Context, id string) (*dto.MemberResponse, error) {
	m, err := s.MemberRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewMemberResponse(m), nil
}

func (s *memberService) ListMembers(ctx context.Context, filter *types.MemberFilter) (*dto.ListMembersResponse, error) {
	members, err := s.MemberRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, dto.NewMemberResponse(m))
	}
	return &dto.ListMembersResponse{Items: items, Total: len(items)}, nil
}

func (s *memberService) ReconcileDebt(ctx context.Context, memberID string) (*dto.DebtReconciliationResponse, error) {
	m, err := s.MemberRepo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	pendingStatus := types.MembershipPaymentStatusPending
	memberships, err := s.MembershipRepo.List(ctx, &types.MembershipFilter{
		MemberID:      memberID,
		PaymentStatus: &pendingStatus,
	})
	if err != nil {
		return nil, err
	}

	recomputed := decimal.Zero
	pending := 0
	for _, ms := range memberships {
		// A cancellation with the keep action leaves the debt owed even
		// though the membership itself is terminal.
		if ms.IsCancelled() && ms.DebtAction != types.DebtActionKeep {
			continue
		}
		recomputed = recomputed.Add(ms.Cost)
		pending++
	}

	resp := &dto.DebtReconciliationResponse{
		MemberID:       memberID,
		CachedDebt:     m.TotalDebt,
		RecomputedDebt: recomputed,
		InSync:         m.TotalDebt.Equal(recomputed),
		PendingCount:   pending,
	}
	if !resp.InSync {
		s.Logger.Warnw("member debt out of sync",
			"member_id", memberID,
			"cached", m.TotalDebt,
			"recomputed", recomputed)
	}

	return resp, nil
}
