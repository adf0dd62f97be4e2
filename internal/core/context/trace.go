package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext correlates the log lines of one request or background run.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace stores t in ctx.
func WithTrace(ctx context.Context, t *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, t)
}

// GetTrace returns the TraceContext of ctx, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	t, _ := ctx.Value(traceContextKey{}).(*TraceContext)
	return t
}

// GetRequestID returns the request id of ctx, or "".
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// SpanTraceID returns the OpenTelemetry trace id of the span in ctx, or "" when
// ctx carries no valid span.
func SpanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// StartBackground tags ctx for a job run outside any HTTP request. The trace id
// follows the active span when there is one.
func StartBackground(ctx context.Context) context.Context {
	traceID := SpanTraceID(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return WithTrace(ctx, &TraceContext{TraceID: traceID, RequestID: "job-" + uuid.NewString()})
}
