package core

import "context"

// Context keys for analysis options
type contextKey string

const progressKey contextKey = "progress"

// Progress is notified while an analysis runs and before anything is written.
type Progress interface {
	Start()
	Stop()
}

type noopProgress struct{}

func (noopProgress) Start() {}
func (noopProgress) Stop()  {}

// WithProgress attaches a progress indicator to the context.
func WithProgress(ctx context.Context, p Progress) context.Context {
	return context.WithValue(ctx, progressKey, p)
}

// progressFrom returns the context's progress indicator, or a no-op.
func progressFrom(ctx context.Context) Progress {
	if p, ok := ctx.Value(progressKey).(Progress); ok && p != nil {
		return p
	}
	return noopProgress{}
}
