package pkglog

import "context"

type correlationIDKey struct{}

// GetCorrelationID returns the correlation id stored in ctx, or "" when the
// context did not pass through the correlation middleware.
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey{}).(string)
	return cid
}

// SetCorrelationID stores a correlation id into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}
