package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	//Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With(String("component", "store"))

	//Act
	log.Info(context.Background(), "applied",
		String("order_id", "#A1"),
		Int("attempt", 2),
		Duration("latency", time.Second),
		Bool("gap", false),
		WithError(errors.New("boom")),
		Lazy("lazy", func() any { return "computed" }),
	)

	//Assert
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "store", fields["component"])
	assert.Equal(t, "#A1", fields["order_id"])
	assert.Equal(t, int64(2), fields["attempt"])
	assert.Equal(t, time.Second, fields["latency"])
	assert.Equal(t, false, fields["gap"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "computed", fields["lazy"])
}

func TestZapLogger_SkipsDisabledLevels(t *testing.T) {
	//Arrange
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core))
	evaluated := false

	//Act
	log.Debug(context.Background(), "noisy", Lazy("x", func() any { evaluated = true; return 1 }))
	log.Warn(context.Background(), "kept")

	//Assert
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.False(t, evaluated)
}

func TestZapLogger_TraceCorrelation(t *testing.T) {
	//Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	//Act
	log.Error(ctx, "command failed")

	//Assert
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), fields["span_id"])
}

func TestZapLogger_MismatchedKindFallsBack(t *testing.T) {
	//Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	//Act
	log.Info(context.Background(), "odd", Field{Key: "n", Value: 7, Kind: KindString})

	//Assert
	assert.Equal(t, int64(7), logs.All()[0].ContextMap()["n"])
}
