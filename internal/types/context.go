package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxMemberID      ContextKey = "ctx_member_id"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// Default values
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderMemberID  = "X-Member-ID"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetMemberID returns the authenticated member id for portal requests
func GetMemberID(ctx context.Context) string {
	if memberID, ok := ctx.Value(CtxMemberID).(string); ok {
		return memberID
	}
	return ""
}

// SetUserID sets the acting user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetMemberID sets the authenticated member ID in the context
func SetMemberID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, CtxMemberID, memberID)
}
