package dto

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gymledger/gymledger/internal/domain/member"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/gymledger/gymledger/internal/validator"
)

type CreateMemberRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string         `json:"phone,omitempty"`
	Metadata types.Metadata `json:"metadata,omitempty"`
}

func (r *CreateMemberRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateMemberRequest) ToMember(ctx context.Context) *member.Member {
	return &member.Member{
		ID:        types.GenerateUUIDWithPrefix(types.UUIDPrefixMember),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		TotalDebt: decimal.Zero,
		Metadata:  r.Metadata,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type MemberResponse struct {
	*member.Member
}

func NewMemberResponse(m *member.Member) *MemberResponse {
	return &MemberResponse{Member: m}
}

type ListMembersResponse struct {
	Items []*MemberResponse `json:"items"`
	Total int               `json:"total"`
}

// DebtReconciliationResponse reports the cached debt counter against the
// value recomputed from pending memberships.
type DebtReconciliationResponse struct {
	MemberID       string          `json:"member_id"`
	CachedDebt     decimal.Decimal `json:"cached_debt"`
	RecomputedDebt decimal.Decimal `json:"recomputed_debt"`
	InSync         bool            `json:"in_sync"`
	PendingCount   int             `json:"pending_count"`
}
