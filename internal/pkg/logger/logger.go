package logger

import (
	"fmt"
	"log/slog"
	"strings"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the application logger is built.
type Options struct {
	Level       string
	Development bool
	OutputPaths []string
}

// ParseLevel maps a textual level to a zap level. Unknown values fall back to info.
func ParseLevel(levelStr string) (zapcore.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return zapcore.DebugLevel, true
	case "INFO", "":
		return zapcore.InfoLevel, true
	case "WARN", "WARNING":
		return zapcore.WarnLevel, true
	case "ERROR":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// New builds the zap logger and installs it behind the default slog logger,
// so libraries that log through log/slog end up in the same sink.
func New(opts Options) (*zap.Logger, error) {
	level, known := ParseLevel(opts.Level)

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	if !known {
		zapLogger.Warn("Invalid log level string, defaulting to INFO", zap.String("input", opts.Level))
	}

	InstallSlog(zapLogger, level)
	return zapLogger, nil
}

// InstallSlog makes slog.Default write through zapLogger.
func InstallSlog(zapLogger *zap.Logger, level zapcore.Level) {
	handler := slogzap.Option{
		Level:  toSlogLevel(level),
		Logger: zapLogger,
	}.NewZapHandler()
	slog.SetDefault(slog.New(handler))
}

func toSlogLevel(level zapcore.Level) slog.Level {
	switch level {
	case zapcore.DebugLevel:
		return slog.LevelDebug
	case zapcore.WarnLevel:
		return slog.LevelWarn
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
