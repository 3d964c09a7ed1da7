package testutil

import (
	"context"

	"github.com/gymledger/gymledger/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxGymID, types.DefaultGymID)
	ctx = context.WithValue(ctx, types.CtxActorID, types.DefaultActorID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
