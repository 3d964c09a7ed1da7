package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/cache"
	"github.com/gymledger/gymledger/internal/domain/membership"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	ierr "github.com/gymledger/gymledger/internal/errors"
	"github.com/gymledger/gymledger/internal/idempotency"
	"github.com/gymledger/gymledger/internal/types"
)

// upcomingRenewalsTTL bounds how stale the cached upcoming-renewals report
// may get.
const upcomingRenewalsTTL = time.Minute

type RenewalService interface {
	// RunAutoRenewal renews every auto-renewal membership whose period has
	// run out, each renewal as its own atomic transaction. Guarded by the
	// gym's date-keyed scan lock unless forced; safe to re-enter thanks to
	// per-membership renewal keys.
	RunAutoRenewal(ctx context.Context, force bool) (*dto.ScanRunResponse, error)

	// RenewMembership performs a single on-demand renewal. The membership
	// must have auto-renewal enabled and must not be cancelled.
	RenewMembership(ctx context.Context, membershipID string) (*dto.RenewMembershipResponse, error)

	// ListUpcomingRenewals reports the auto-renewal memberships ending
	// within daysAhead days, read-only and briefly cached.
	ListUpcomingRenewals(ctx context.Context, daysAhead int) (*dto.UpcomingRenewalsResponse, error)
}

type renewalService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

func NewRenewalService(params ServiceParams) RenewalService {
	return &renewalService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *renewalService) RunAutoRenewal(ctx context.Context, force bool) (*dto.ScanRunResponse, error) {
	loc := s.location()
	today := types.DateOnly(time.Now(), loc)
	dateKey := today.Format(types.CivilDateLayout)

	if !force {
		lock := scanlock.New(ctx, scanScopeRenewal, dateKey)
		if err := s.ScanLockRepo.Acquire(ctx, lock); err != nil {
			return nil, err
		}
	}

	autoRenewal := true
	activeStatus := types.MembershipStatusActive
	candidates, err := s.MembershipRepo.List(ctx, &types.MembershipFilter{
		Status:      &activeStatus,
		AutoRenewal: &autoRenewal,
		EndBefore:   &today,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ScanRunResponse{Date: dateKey}
	for _, m := range candidates {
		if _, err := s.renewOne(ctx, m, today); err != nil {
			s.Logger.Errorw("failed to renew membership",
				"membership_id", m.ID, "member_id", m.MemberID, "error", err)
			resp.Errors = append(resp.Errors, dto.NewScanItemError(m, err))
			resp.Failed++
			continue
		}
		resp.Processed++
	}

	s.Cache.DeleteByPrefix(ctx, cache.PrefixUpcomingRenewals)

	s.Logger.Infow("auto-renewal run complete",
		"date", dateKey,
		"processed", resp.Processed,
		"failed", resp.Failed)
	return resp, nil
}

func (s *renewalService) RenewMembership(ctx context.Context, membershipID string) (*dto.RenewMembershipResponse, error) {
	m, err := s.MembershipRepo.Get(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.IsCancelled() {
		return nil, ierr.NewError("cancelled membership cannot be renewed").
			WithHint("The membership has been cancelled").
			Mark(ierr.ErrInvalidOperation)
	}
	if !m.AutoRenewal {
		return nil, ierr.NewError("membership does not have auto-renewal enabled").
			WithHint("Enable auto-renewal before renewing this membership").
			WithReportableDetails(map[string]any{
				"membership_id": m.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	today := types.DateOnly(time.Now(), s.location())
	successor, err := s.renewOne(ctx, m, today)
	if err != nil {
		return nil, err
	}

	s.Cache.DeleteByPrefix(ctx, cache.PrefixUpcomingRenewals)

	return &dto.RenewMembershipResponse{
		Previous: dto.NewMembershipResponse(m),
		Renewed:  dto.NewMembershipResponse(successor),
	}, nil
}

// renewOne expires the predecessor and creates its linked successor in one
// transaction, adding the new period's cost to the member's debt. The
// successor carries a deterministic renewal key derived from the predecessor,
// so a re-entered run finds the existing successor and skips the work.
func (s *renewalService) renewOne(ctx context.Context, m *membership.MembershipAssignment, today time.Time) (*membership.MembershipAssignment, error) {
	renewalKey := s.idempGen.GenerateKey(idempotency.ScopeRenewal, map[string]interface{}{
		"membership_id": m.ID,
	})

	existing, err := s.MembershipRepo.GetByRenewalKey(ctx, renewalKey)
	if err == nil {
		s.Logger.Infow("membership already renewed, skipping",
			"membership_id", m.ID, "successor_id", existing.ID)
		return existing, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	member, err := s.MemberRepo.Get(ctx, m.MemberID)
	if err != nil {
		return nil, err
	}

	successor := s.buildSuccessor(ctx, m, today, renewalKey)
	now := time.Now().UTC()

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		m.MarkExpired(ctx, now)
		m.RenewedAutomatically = true
		if err := s.MembershipRepo.Update(ctx, m); err != nil {
			return err
		}

		if err := s.MembershipRepo.Create(ctx, successor); err != nil {
			return err
		}

		member.AddDebt(successor.Cost)
		member.Touch(ctx)
		return s.MemberRepo.Update(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

// buildSuccessor anchors the new period today with the predecessor's exact
// duration in days, falling back to the default period length when the
// stored dates cannot produce one.
func (s *renewalService) buildSuccessor(ctx context.Context, m *membership.MembershipAssignment, today time.Time, renewalKey string) *membership.MembershipAssignment {
	days := types.RenewalPeriodDays(m.StartDate, m.EndDate, s.location())
	end := today.AddDate(0, 0, days)

	return &membership.MembershipAssignment{
		ID:                   types.GenerateUUIDWithPrefix(types.UUIDPrefixMembership),
		MemberID:             m.MemberID,
		ActivityID:           m.ActivityID,
		ActivityName:         m.ActivityName,
		StartDate:            today,
		EndDate:              end,
		Cost:                 m.Cost,
		MembershipStatus:     types.MembershipStatusActive,
		PaymentStatus:        types.MembershipPaymentStatusPending,
		PaymentFrequency:     m.PaymentFrequency,
		CustomPeriodDays:     m.CustomPeriodDays,
		PaidAmount:           decimal.Zero,
		SessionsAttended:     0,
		SessionsTotal:        m.SessionsTotal,
		AutoRenewal:          true,
		PreviousMembershipID: m.ID,
		RenewalKey:           renewalKey,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
}

func (s *renewalService) ListUpcomingRenewals(ctx context.Context, daysAhead int) (*dto.UpcomingRenewalsResponse, error) {
	if daysAhead <= 0 {
		daysAhead = types.DefaultRenewalDays
	}

	cacheKey := fmt.Sprintf("%s%s:%d", cache.PrefixUpcomingRenewals, types.GetGymID(ctx), daysAhead)
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if resp, ok := cached.(*dto.UpcomingRenewalsResponse); ok {
			return resp, nil
		}
	}

	loc := s.location()
	today := types.DateOnly(time.Now(), loc)
	cutoff := today.AddDate(0, 0, daysAhead)

	autoRenewal := true
	activeStatus := types.MembershipStatusActive
	memberships, err := s.MembershipRepo.List(ctx, &types.MembershipFilter{
		Status:        &activeStatus,
		AutoRenewal:   &autoRenewal,
		EndOnOrBefore: &cutoff,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*dto.UpcomingRenewal, 0, len(memberships))
	for _, m := range memberships {
		items = append(items, &dto.UpcomingRenewal{
			Membership: dto.NewMembershipResponse(m),
			DaysLeft:   types.DaysBetween(today, m.EndDate, loc),
		})
	}

	resp := dto.NewUpcomingRenewalsResponse(items)
	s.Cache.Set(ctx, cacheKey, resp, upcomingRenewalsTTL)
	return resp, nil
}
