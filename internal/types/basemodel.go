package types

import (
	"context"
	"time"
)

// BaseModel is embedded by all domain models that are persisted in the
// document store.
type BaseModel struct {
	GymID     string    `json:"gym_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
}

func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		GymID:     GetGymID(ctx),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetActorID(ctx),
		UpdatedBy: GetActorID(ctx),
	}
}

// Touch updates the audit fields on mutation.
func (m *BaseModel) Touch(ctx context.Context) {
	m.UpdatedAt = time.Now().UTC()
	m.UpdatedBy = GetActorID(ctx)
}
