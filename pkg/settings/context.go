package settings

import "context"

type runKey struct{}

// IntoContext returns a copy of ctx carrying r.
func IntoContext(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}

// FromContext returns the settings stored by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(runKey{}).(*Run)
	return r, ok && r != nil
}

// RunFrom returns the settings in ctx, or the CLI defaults when there are
// none.
func RunFrom(ctx context.Context) *Run {
	if r, ok := FromContext(ctx); ok {
		return r
	}
	return NewCliParams()
}
