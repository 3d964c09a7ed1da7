package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxGymID     ContextKey = "ctx_gym_id"
	CtxActorID   ContextKey = "ctx_actor_id"
	CtxDocTx     ContextKey = "ctx_doc_tx"

	// Default values used by scripts and tests
	DefaultGymID   = "00000000-0000-0000-0000-000000000000"
	DefaultActorID = "00000000-0000-0000-0000-000000000000"
)

// Header names understood by the API layer
const (
	HeaderRequestID = "X-Request-ID"
	HeaderGymID     = "X-Gym-ID"
	HeaderActorID   = "X-Actor-ID"
)

func GetGymID(ctx context.Context) string {
	if gymID, ok := ctx.Value(CtxGymID).(string); ok {
		return gymID
	}
	return ""
}

func GetActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(CtxActorID).(string); ok {
		return actorID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetGymID sets the gym ID in the context
func SetGymID(ctx context.Context, gymID string) context.Context {
	return context.WithValue(ctx, CtxGymID, gymID)
}

// SetActorID sets the acting operator ID in the context
func SetActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, CtxActorID, actorID)
}

// ValidateGymContext validates that the gym scope is present in the context
func ValidateGymContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}

	if GetGymID(ctx) == "" {
		return fmt.Errorf("no gym scope found in context")
	}

	return nil
}
