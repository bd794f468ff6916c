package authctx

import "context"

type contextKey string

const sessionContextKey contextKey = "editSession"

// Session identifies an authenticated edit session plus the optional device
// uid attached by the identity middleware.
type Session struct {
	TenantID string
	UID      string
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func FromContext(ctx context.Context) *Session {
	val, ok := ctx.Value(sessionContextKey).(Session)
	if !ok {
		return nil
	}
	return &val
}

// UID returns the device uid when present, else "".
func UID(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.UID
	}
	return ""
}
