package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/membermatters/memberportal/internal/types"
)

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

// MemberContextMiddleware resolves the calling member for portal routes.
// The upstream auth proxy sets the header after validating the session.
func MemberContextMiddleware(c *gin.Context) {
	memberID := c.GetHeader(types.HeaderMemberID)
	if memberID != "" {
		ctx := types.SetMemberID(c.Request.Context(), memberID)
		c.Request = c.Request.WithContext(ctx)
	}
	c.Next()
}
