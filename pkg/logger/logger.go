package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Init builds the global logger for the given environment.
func Init(environment string) error {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	log = built
	return nil
}

// Get returns the global logger, falling back to a development logger
// when Init was never called (tests, ad hoc tools).
func Get() *zap.Logger {
	if log == nil {
		log, _ = zap.NewDevelopment()
	}
	return log
}

// WithContext returns the logger enriched with the request correlation ID.
func WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Get()
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		return Get().With(zap.String(string(correlationIDKey), id))
	}
	return Get()
}

// ContextWithCorrelationID stores a correlation ID on the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// Debug logs a debug message on the global logger.
func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }

// Info logs an info message on the global logger.
func Info(msg string, fields ...zap.Field) { Get().Info(msg, fields...) }

// Warn logs a warning on the global logger.
func Warn(msg string, fields ...zap.Field) { Get().Warn(msg, fields...) }

// Error logs an error on the global logger.
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) { Get().Fatal(msg, fields...) }

// InfoContext logs an info message with context enrichment.
func InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// WarnContext logs a warning with context enrichment.
func WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// ErrorContext logs an error with context enrichment.
func ErrorContext(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Sync flushes buffered entries.
func Sync() error {
	if log != nil {
		return log.Sync()
	}
	return nil
}
