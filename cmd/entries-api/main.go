// Package main is the entry point for the entries API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stacklok/entries-server/cmd/entries-api/app"
	"github.com/stacklok/entries-server/internal/config"
)

// getLogLevel reads ENTRIES_LOG_LEVEL, falling back to LOG_LEVEL.
// Unknown values select info.
func getLogLevel() zapcore.Level {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	return parseLogLevel(levelStr)
}

func parseLogLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		// slog debug records reach zap through logr as V(4), i.e. level -4
		return zapcore.Level(slog.LevelDebug)
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// newZapLogger writes JSON to stderr, keeping stdout for command output
func newZapLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// traceHandler injects the OpenTelemetry trace_id and span_id into every
// log record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func newHandler(z *zap.Logger) slog.Handler {
	return &traceHandler{Handler: logr.ToSlogHandler(zapr.NewLogger(z))}
}

func main() {
	level := getLogLevel()
	z, err := newZapLogger(level)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = z.Sync() }()

	slog.SetDefault(slog.New(newHandler(z)))

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
