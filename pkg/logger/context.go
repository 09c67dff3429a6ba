package logger

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

// With returns a context carrying extra log attributes, appended to any
// already present.
func With(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]any)
	attrs := make([]any, 0, len(prev)+len(args))
	attrs = append(append(attrs, prev...), args...)
	return context.WithValue(ctx, attrsKey{}, attrs)
}

// From decorates base with the attributes stored in ctx. A nil base falls
// back to the process logger.
func From(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = LoggerWrapper()
	}
	if attrs, ok := ctx.Value(attrsKey{}).([]any); ok && len(attrs) > 0 {
		return base.With(attrs...)
	}
	return base
}
