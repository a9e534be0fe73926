package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return NopLogger{}
}

type zapLogger struct {
	z *zap.Logger
}

// New builds a zap-backed logger writing to w. env "production" selects JSON
// encoding; anything else gets the console encoder. level is parsed
// case-insensitively and falls back to info.
func New(env, level string, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if strings.EqualFold(strings.TrimSpace(env), "production") {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return FromZap(zap.New(core))
}

// FromZap adapts an existing zap logger.
func FromZap(z *zap.Logger) Logger {
	if z == nil {
		return NopLogger{}
	}
	return zapLogger{z: z}
}

// ParseLevel maps a level name such as "INFO" or "warning" to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "critical", "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l zapLogger) Info(msg string, obj any)  { l.z.Info(msg, fields(obj)...) }
func (l zapLogger) Warn(msg string, obj any)  { l.z.Warn(msg, fields(obj)...) }
func (l zapLogger) Debug(msg string, obj any) { l.z.Debug(msg, fields(obj)...) }
func (l zapLogger) Error(msg string, obj any) { l.z.Error(msg, fields(obj)...) }

// fields expands map payloads into one zap field per key, sorted for stable output.
func fields(obj any) []zap.Field {
	switch v := obj.(type) {
	case nil:
		return nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]zap.Field, 0, len(keys))
		for _, k := range keys {
			if err, ok := v[k].(error); ok {
				out = append(out, zap.NamedError(k, err))
				continue
			}
			out = append(out, zap.Any(k, v[k]))
		}
		return out
	case error:
		return []zap.Field{zap.Error(v)}
	default:
		return []zap.Field{zap.Any("obj", v)}
	}
}

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a compatibility helper for format-style debug logging.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}
