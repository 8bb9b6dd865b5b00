// Package logx provides structured logging for the fault-injection
// engine using zap, adapted from the emulator's own logger wrapper
// for the engine's own event vocabulary: reloads, semantic/parse
// errors, and activations.
package logx

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with FIESer-specific helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// ReloadOK logs a successful catalogue (re)load.
func (l *Logger) ReloadOK(path string, requestID string, faultCount int) {
	l.Info("FIESER: Configuration file loaded successfully",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("faults", faultCount),
	)
}

// ReloadFailed logs a rejected (re)load, preserving the previous
// catalogue.
func (l *Logger) ReloadFailed(path string, requestID string, err error) {
	l.Error("FIESER: configuration file load failed",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Error(err),
	)
}

// SemanticViolation logs one validator rule violation.
func (l *Logger) SemanticViolation(faultID int, message string) {
	l.Warn("FIESER: fault id semantic error",
		zap.Int("fault_id", faultID),
		zap.String("reason", message),
	)
}

// ParseViolation logs one malformed XML element.
func (l *Logger) ParseViolation(faultID int, message string) {
	l.Warn("FIESER: fault syntax error",
		zap.Int("fault_id", faultID),
		zap.String("reason", message),
	)
}

// Activation logs a single fault activation at debug level; this is
// the hot path, so it's gated by the logger's level rather than a
// caller-side boolean.
func (l *Logger) Activation(faultID int, component, severity string) {
	l.Debug("fault activated",
		zap.Int("fault_id", faultID),
		zap.String("component", component),
		zap.String("severity", severity),
	)
}

// Hex formats a uint64 as a 0x-prefixed hex string for logging.
func Hex(v uint64) string {
	return "0x" + hexString(v)
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Addr creates an address field.
func Addr(addr uint64) zap.Field {
	return zap.String("addr", Hex(addr))
}
