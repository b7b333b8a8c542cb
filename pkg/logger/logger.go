// Package logger is the zap setup shared by the binaries and the request path.
//
// Code that has a context logs through the package functions (Info, Warn, ...),
// which pick the request logger from ctx and tag entries with trace and user ids.
package logger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "gestaopro/internal/core/context"
)

// Logger is a zap.SugaredLogger with helpers for request scoped fields.
type Logger struct {
	*zap.SugaredLogger
}

// Config selects level and output. An unknown Level falls back to info.
type Config struct {
	Level       string
	Development bool // console encoder with colours
	OutputPaths []string
}

// New builds a logger and installs it as the process default.
func New(cfg Config) (*Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	l := &Logger{z.Sugar()}
	SetDefault(l)
	return l, nil
}

// NewNop discards every entry.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var process atomic.Pointer[Logger]

// SetDefault replaces the logger used when ctx carries none.
func SetDefault(l *Logger) {
	process.Store(l)
}

// Default returns the process logger. Until New or SetDefault runs it is a
// production logger on stdout.
func Default() *Logger {
	if l := process.Load(); l != nil {
		return l
	}
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stdout"}
	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	fallback := &Logger{z.Sugar()}
	if process.CompareAndSwap(nil, fallback) {
		return fallback
	}
	return process.Load()
}

// contextFields returns the trace and user key-value pairs found in ctx.
func contextFields(ctx context.Context) []any {
	var kv []any
	if trace := appctx.GetTrace(ctx); trace != nil {
		kv = append(kv, "trace_id", trace.TraceID, "request_id", trace.RequestID)
	}
	if user := appctx.GetUser(ctx); user != nil {
		kv = append(kv, "user_id", user.UserID)
	}
	return kv
}

// WithContext tags the logger with the trace and user of ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	kv := contextFields(ctx)
	if len(kv) == 0 {
		return l
	}
	return l.With(kv...)
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent names the subsystem writing the entries.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

type ctxKey struct{}

// WithLogger attaches l to ctx. Middleware uses it for the per-request logger.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the attached logger, or Default, tagged with ctx fields.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(ctxKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
