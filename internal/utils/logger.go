// internal/utils/logger.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects level, encoding and an optional log file
type LoggerConfig struct {
	Level    string // debug, info, warn, error
	Encoding string // json or console
	File     string // empty means stdout only
}

// Logger is a thin field-map façade over zap
type Logger struct {
	mu    sync.RWMutex
	zap   *zap.Logger
	level zap.AtomicLevel
}

var (
	globalLogger *Logger
	loggerOnce   sync.Once
)

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		level := zap.NewAtomicLevelAt(zap.InfoLevel)
		globalLogger = &Logger{
			zap:   newZap(level, "json", nil),
			level: level,
		}
	})
	return globalLogger
}

// InitLogger rebuilds the global logger from cfg
func InitLogger(cfg LoggerConfig) error {
	logger := GetLogger()

	levelName := strings.ToLower(cfg.Level)
	if levelName == "" {
		levelName = "info"
	}
	if err := logger.level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	outputs := []string{"stdout"}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		outputs = append(outputs, cfg.File)
	}

	z, err := buildZap(logger.level, cfg.Encoding, outputs)
	if err != nil {
		return err
	}

	logger.mu.Lock()
	old := logger.zap
	logger.zap = z
	logger.mu.Unlock()
	_ = old.Sync()
	return nil
}

// NewLogger wraps an existing zap logger, mainly for tests
func NewLogger(z *zap.Logger) *Logger {
	return &Logger{zap: z, level: zap.NewAtomicLevelAt(zap.DebugLevel)}
}

func newZap(level zap.AtomicLevel, encoding string, outputs []string) *zap.Logger {
	if outputs == nil {
		outputs = []string{"stdout"}
	}
	z, err := buildZap(level, encoding, outputs)
	if err != nil {
		return zap.NewNop()
	}
	return z
}

func buildZap(level zap.AtomicLevel, encoding string, outputs []string) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding = strings.ToLower(encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	zapConfig := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	z, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return z, nil
}

// Zap exposes the underlying logger for components that take *zap.Logger
func (l *Logger) Zap() *zap.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zap
}

// SetLogLevel changes the minimum level at runtime
func (l *Logger) SetLogLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.Zap().Sync()
}

func toFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.Zap().Debug(message, toFields(fields)...)
}

// Info logs an info message
func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.Zap().Info(message, toFields(fields)...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.Zap().Warn(message, toFields(fields)...)
}

// Error logs an error message
func (l *Logger) Error(message string, fields map[string]interface{}) {
	l.Zap().Error(message, toFields(fields)...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields map[string]interface{}) {
	l.Zap().Fatal(message, toFields(fields)...)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Zap().Sugar().Debugf(format, args...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Zap().Sugar().Infof(format, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Zap().Sugar().Warnf(format, args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Zap().Sugar().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Zap().Sugar().Fatalf(format, args...)
}
