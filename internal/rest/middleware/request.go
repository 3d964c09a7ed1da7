package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gymledger/gymledger/internal/types"
)

// RequestIDMiddleware stamps every request with an ID, minting one when the
// caller did not supply it.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// GymContextMiddleware resolves the gym and acting operator from the request
// headers into the context. Every repository read and write is scoped by the
// gym carried here.
func GymContextMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	gymID := c.GetHeader(types.HeaderGymID)
	if gymID == "" {
		gymID = types.DefaultGymID
	}
	ctx = types.SetGymID(ctx, gymID)

	actorID := c.GetHeader(types.HeaderActorID)
	if actorID == "" {
		actorID = types.DefaultActorID
	}
	ctx = types.SetActorID(ctx, actorID)

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
