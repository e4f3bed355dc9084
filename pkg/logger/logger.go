package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	// Level is the minimum enabled logging level: debug, info, warn, error
	Level string
	// ServiceName is attached to every log entry
	ServiceName string
	// Development enables console encoding with colored levels
	Development bool
}

// Logger wraps zap.Logger
type Logger struct {
	*zap.Logger
}

var (
	global   *Logger
	globalMu sync.Mutex
)

// Init initializes the global logger. Safe to call once at startup.
func Init(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{Level: "info", ServiceName: "app"}
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Development {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)

	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", cfg.ServiceName)),
	)

	l := &Logger{Logger: zl}
	globalMu.Lock()
	global = l
	globalMu.Unlock()
	return l, nil
}

// Get returns the global logger, initializing a default one if needed.
func Get() *Logger {
	if global == nil {
		l, err := Init(&Config{Level: "info", ServiceName: "app"})
		if err != nil {
			panic(err)
		}
		return l
	}
	return global
}

// Sync flushes any buffered log entries
func Sync() error {
	if global != nil {
		return global.Logger.Sync()
	}
	return nil
}

// With returns a child logger with the given fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}
