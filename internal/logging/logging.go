// Package logging builds the zap logger shared by the CLI, terminal and API.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seenimoa/finterm/internal/config"
)

// New builds a logger from the logging section of the config. Output goes
// to stderr so command output on stdout stays clean.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "", "text":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("logging format %q: want text or json", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableCaller = level > zapcore.DebugLevel

	return zc.Build()
}

// Must is New that falls back to a production logger on bad config.
func Must(cfg config.LoggingConfig) *zap.Logger {
	log, err := New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v, using defaults\n", err)
		return zap.Must(zap.NewProduction())
	}
	return log
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }
