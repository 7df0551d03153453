package ids

import "context"

type ctxKey int

const (
	contextIDKey ctxKey = iota
	correlationIDKey
)

// WithContextID returns a derived context carrying id as the current
// request-scoped ContextID. Interceptors, the prompt adapter, and the
// result pipeline read it back via CurrentContextID instead of having it
// threaded through every call explicitly.
func WithContextID(ctx context.Context, id ContextID) context.Context {
	return context.WithValue(ctx, contextIDKey, id)
}

// CurrentContextID returns the ContextID bound to ctx, if any.
func CurrentContextID(ctx context.Context) (ContextID, bool) {
	id, ok := ctx.Value(contextIDKey).(ContextID)
	return id, ok
}

// WithCorrelationID returns a derived context carrying id as the current
// request-scoped CorrelationID.
func WithCorrelationID(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CurrentCorrelationID returns the CorrelationID bound to ctx, if any.
func CurrentCorrelationID(ctx context.Context) (CorrelationID, bool) {
	id, ok := ctx.Value(correlationIDKey).(CorrelationID)
	return id, ok
}
