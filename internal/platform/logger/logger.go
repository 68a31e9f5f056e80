package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap so call sites depend on one place for structured
// logging. The zap.Logger methods (Info, Warn, Error, ...) are promoted.
type Logger struct {
	*zap.Logger
	config *Config
}

var (
	globalLogger *Logger
	once         sync.Once
)

// NewLogger builds the process-wide logger from environment configuration.
// The first call wins; later calls return the same instance.
func NewLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()

		var zapConfig zap.Config
		if cfg.Level == "debug" {
			zapConfig = zap.NewDevelopmentConfig()
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig = zap.NewProductionConfig()
			zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}
		zapConfig.Level.SetLevel(cfg.ZapLevel())

		if cfg.OutputFile != "stdout" && cfg.OutputFile != "stderr" {
			logDir := filepath.Dir(cfg.OutputFile)
			if err := os.MkdirAll(logDir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "logger: cannot create log directory %q, using stdout: %v\n", logDir, err)
				zapConfig.OutputPaths = []string{"stdout"}
				zapConfig.ErrorOutputPaths = []string{"stderr"}
			} else {
				zapConfig.OutputPaths = []string{cfg.OutputFile, "stdout"}
				zapConfig.ErrorOutputPaths = []string{cfg.OutputFile, "stderr"}
			}
		} else {
			zapConfig.OutputPaths = []string{cfg.OutputFile}
			zapConfig.ErrorOutputPaths = []string{"stderr"}
		}

		switch strings.ToLower(cfg.Format) {
		case "console", "text":
			zapConfig.Encoding = "console"
		default:
			zapConfig.Encoding = "json"
		}

		zl, err := zapConfig.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: falling back to zap production defaults: %v\n", err)
			zl, _ = zap.NewProduction()
		}

		globalLogger = &Logger{Logger: zl, config: cfg}
	})
	return globalLogger
}

// NewNop returns a logger that discards everything. Test helpers use it.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: &Config{}}
}

// Named adds a path segment to the logger's name for per-component
// context.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With attaches structured fields to every entry the returned logger
// emits.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}

// Sync flushes buffered entries. Called on shutdown; sync errors on
// stdout are expected and ignored by callers.
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
