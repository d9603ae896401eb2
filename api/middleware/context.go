package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxAccountID contextKey = "account_id"
)

// UserIDFromContext returns the authenticated user id, or "" outside Auth.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

// AccountIDFromContext returns the account bound to the token, if any.
func AccountIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccountID)
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, ctxUserID, userID)
}

func withAccountID(ctx context.Context, accountID string) context.Context {
	return withValue(ctx, ctxAccountID, accountID)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
