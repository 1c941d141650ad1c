package services

import "context"

type contextKey string

const (
	itemIDKey contextKey = "item_id"
	stepKey   contextKey = "step"
	passIDKey contextKey = "pass_id"
)

// WithItemID annotates context with the Drive file identifier being processed.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the Drive file identifier if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(itemIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithStep annotates context with the pipeline step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the pipeline step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stepKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithPassID annotates context with the scan pass correlation identifier.
func WithPassID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, passIDKey, id)
}

// PassIDFromContext returns the scan pass identifier if present.
func PassIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(passIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
