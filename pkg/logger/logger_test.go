package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "sitebook/internal/core/context"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestInfo_AddsContextFields(t *testing.T) {
	l, logs := observed()
	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t1", RequestID: "r1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u1", Role: appctx.RoleAdmin})

	Info(ctx, "payment recorded", "amount", "100")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "payment recorded", entries[0].Message)
		assert.Equal(t, "t1", fields["trace_id"])
		assert.Equal(t, "r1", fields["request_id"])
		assert.Equal(t, "u1", fields["user_id"])
		assert.Equal(t, appctx.RoleAdmin, fields["role"])
		assert.Equal(t, "100", fields["amount"])
	}
}

func TestWithComponent(t *testing.T) {
	l, logs := observed()
	l.WithComponent("worker").Infow("tick")
	assert.Equal(t, "worker", logs.All()[0].ContextMap()["component"])
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l, logs := observed()
	SetDefault(l)
	Warn(context.Background(), "no logger in context")
	assert.Equal(t, 1, logs.Len())
}
