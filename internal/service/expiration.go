package service

import (
	"context"
	"time"

	"github.com/gymledger/gymledger/internal/api/dto"
	"github.com/gymledger/gymledger/internal/domain/membership"
	"github.com/gymledger/gymledger/internal/domain/scanlock"
	"github.com/gymledger/gymledger/internal/types"
)

// Scan scopes recorded on the per-day run markers.
const (
	scanScopeExpiration = "expiration"
	scanScopeRenewal    = "renewal"
)

type ExpirationService interface {
	// RunExpirationScan flips active memberships whose end date is strictly
	// before today to expired. Guarded by the gym's date-keyed scan lock
	// unless forced; idempotent across re-runs.
	RunExpirationScan(ctx context.Context, force bool) (*dto.ScanRunResponse, error)
}

type expirationService struct {
	ServiceParams
}

func NewExpirationService(params ServiceParams) ExpirationService {
	return &expirationService{ServiceParams: params}
}

func (s *expirationService) RunExpirationScan(ctx context.Context, force bool) (*dto.ScanRunResponse, error) {
	loc := s.location()
	today := types.DateOnly(time.Now(), loc)
	dateKey := today.Format(types.CivilDateLayout)

	if !force {
		lock := scanlock.New(ctx, scanScopeExpiration, dateKey)
		if err := s.ScanLockRepo.Acquire(ctx, lock); err != nil {
			return nil, err
		}
	}

	activeStatus := types.MembershipStatusActive
	candidates, err := s.MembershipRepo.List(ctx, &types.MembershipFilter{
		Status:    &activeStatus,
		EndBefore: &today,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ScanRunResponse{Date: dateKey}
	if len(candidates) == 0 {
		return resp, nil
	}

	now := time.Now().UTC()

	// One member's failure never aborts the scan; errors are collected and
	// the next member is processed.
	byMember := make(map[string][]*membership.MembershipAssignment)
	var order []string
	for _, m := range candidates {
		if _, seen := byMember[m.MemberID]; !seen {
			order = append(order, m.MemberID)
		}
		byMember[m.MemberID] = append(byMember[m.MemberID], m)
	}

	for _, memberID := range order {
		batch := byMember[memberID]
		for _, m := range batch {
			m.MarkExpired(ctx, now)
		}
		if err := s.MembershipRepo.BatchExpire(ctx, batch); err != nil {
			s.Logger.Errorw("failed to expire memberships",
				"member_id", memberID, "count", len(batch), "error", err)
			for _, m := range batch {
				resp.Errors = append(resp.Errors, dto.NewScanItemError(m, err))
			}
			resp.Failed += len(batch)
			continue
		}
		resp.Processed += len(batch)
	}

	s.Logger.Infow("expiration scan complete",
		"date", dateKey,
		"processed", resp.Processed,
		"failed", resp.Failed)
	return resp, nil
}
