package logger

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	log *zap.Logger
}

// NewLogger writes JSON to stdout. Production logs at info with sampling, everything else
// logs at debug with colored levels.
func NewLogger(serviceName string, isProd bool) Logger {
	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	level := zapcore.DebugLevel
	if isProd {
		config = zap.NewProductionEncoderConfig()
		level = zapcore.InfoLevel
	}
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	var core zapcore.Core = zapcore.NewCore(zapcore.NewJSONEncoder(config), zapcore.AddSync(os.Stdout), level)
	if isProd {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 0)
	}
	return FromZap(zap.New(core).With(zap.String("service", serviceName)))
}

// FromZap wraps an existing zap logger, e.g. one built with zaptest/observer.
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{log: l}
}

// NewNop discards everything. Used by tests and by components built without a logger.
func NewNop() Logger {
	return FromZap(zap.NewNop())
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.write(ctx, zapcore.DebugLevel, msg, fields)
}

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.write(ctx, zapcore.InfoLevel, msg, fields)
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.write(ctx, zapcore.WarnLevel, msg, fields)
}

func (z *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.write(ctx, zapcore.ErrorLevel, msg, fields)
}

func (z *zapLogger) With(fields ...Field) Logger {
	return FromZap(z.log.With(convertFields(fields)...))
}

// write skips field conversion (and Lazy evaluation) when the level is disabled.
func (z *zapLogger) write(ctx context.Context, level zapcore.Level, msg string, fields []Field) {
	ce := z.log.Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(withTrace(ctx, convertFields(fields))...)
}

func withTrace(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return fields
	}
	return append(fields,
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

func convertFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, convertField(f))
	}
	return out
}

func convertField(f Field) zap.Field {
	val := f.Value
	if fn, ok := val.(func() any); ok {
		val = fn()
	}
	switch v := val.(type) {
	case string:
		if f.Kind == KindString {
			return zap.String(f.Key, v)
		}
	case int:
		if f.Kind == KindInt {
			return zap.Int(f.Key, v)
		}
	case float64:
		if f.Kind == KindFloat {
			return zap.Float64(f.Key, v)
		}
	case bool:
		if f.Kind == KindBool {
			return zap.Bool(f.Key, v)
		}
	case time.Duration:
		if f.Kind == KindDuration {
			return zap.Duration(f.Key, v)
		}
	case error:
		if f.Kind == KindError {
			return zap.Error(v)
		}
	}
	// mismatched kinds still get logged
	return zap.Any(f.Key, val)
}
