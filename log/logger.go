// Package log provides structured logging built on go.uber.org/zap.
//
// Two logger variants are available:
//   - Logger: non-sugared zap.Logger for core runtime paths (hot wrapper
//     code, the Call Logger) where allocation-per-call matters.
//   - SugaredLogger: printf-style logging for CLI/debug surfaces.
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger with whatever process-scoped fields the
// caller attached at construction (environment, component name).
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger wraps zap.SugaredLogger for printf-style logging.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// Format selects the wire encoding a Logger writes.
type Format string

// Formats per spec.md §4.E's event formatting modes. Console and
// structured are both human-oriented text encodings; json_rpc/mcp_debug
// reuse the JSON encoder and differ only in what logx wraps around them.
const (
	FormatConsole    Format = "console"
	FormatJSON       Format = "json_rpc"
	FormatStructured Format = "structured"
)

// NewLogger creates a logger writing JSON-encoded entries to os.Stderr
// with the given base fields attached to every entry.
func NewLogger(fields ...zap.Field) *Logger {
	return newLoggerWithWriter(FormatJSON, os.Stderr, fields...)
}

// NewLoggerWithFormat creates a logger using the given Format.
func NewLoggerWithFormat(format Format, fields ...zap.Field) *Logger {
	return newLoggerWithWriter(format, os.Stderr, fields...)
}

// WithOutput returns a new logger with a different output writer,
// keeping this logger's format and fields.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	core := zapcore.NewCore(l.encoder(), zapcore.AddSync(w), zapcore.DebugLevel)
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))}
}

func (l *Logger) encoder() zapcore.Encoder {
	cfg := encoderConfig()
	return zapcore.NewJSONEncoder(cfg)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

func newLoggerWithWriter(format Format, w io.Writer, fields ...zap.Field) *Logger {
	cfg := encoderConfig()

	var encoder zapcore.Encoder
	switch format {
	case FormatConsole, FormatStructured:
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	default:
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel)
	zapLogger := zap.New(core)
	if len(fields) > 0 {
		zapLogger = zapLogger.With(fields...)
	}
	return &Logger{zap: zapLogger}
}

// Debug logs a debug message with structured fields.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message with structured fields.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message with structured fields.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message with structured fields.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// With returns a new Logger with additional structured fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

// Sugar returns a SugaredLogger for printf-style logging, used on
// CLI/debug surfaces where convenience matters more than allocation.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) { s.sugar.Debugf(template, args...) }

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) { s.sugar.Infof(template, args...) }

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) { s.sugar.Warnf(template, args...) }

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) { s.sugar.Errorf(template, args...) }

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
