// Package requestctx carries per-request values: the scoped logger, trace ids
// and the visitor session.
package requestctx

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

// key is unexported per value type so no other package can collide with it.
type key[T any] struct{}

func store[T any](ctx context.Context, value T) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key[T]{}, value)
}

func load[T any](ctx context.Context) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	value, ok := ctx.Value(key[T]{}).(T)
	return value, ok
}

var noopLogger = zap.NewNop()

// TraceInfo captures trace metadata propagated through request context.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// WithLogger attaches the request-scoped logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return store(ctx, logger)
}

// Logger returns the request logger, or a no-op logger when none is attached.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := load[*zap.Logger](ctx); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger is the logger Logger falls back to.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return store(ctx, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return load[TraceInfo](ctx)
}

// TraceID is "" when the request carries no trace.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithSession records who is shopping. A nil session is stored as Anonymous.
func WithSession(ctx context.Context, session domain.Session) context.Context {
	if session == nil {
		session = domain.Anonymous{}
	}
	return store(ctx, session)
}

// Session returns the visitor session, defaulting to Anonymous.
func Session(ctx context.Context) domain.Session {
	if session, ok := load[domain.Session](ctx); ok && session != nil {
		return session
	}
	return domain.Anonymous{}
}

// SessionUserID returns the signed-in user id, or "" for anonymous visitors.
func SessionUserID(ctx context.Context) string {
	if user, ok := domain.SessionUser(Session(ctx)); ok {
		return user.ID
	}
	return ""
}
