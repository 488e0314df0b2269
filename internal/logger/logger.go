// Package logger builds the zap.Logger used across the CLI, in the
// functional-options shape the teacher codebase uses for its own
// logger construction (NewLogger(opts...), WithDebug, WithFormat).
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures New.
type Option func(*options)

type options struct {
	debug  bool
	format string
	quiet  bool
}

// WithDebug enables debug-level logging.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

// WithFormat selects the zap encoding: "json" or "console" (default).
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithQuiet suppresses all but error-level output, for scripted runs.
func WithQuiet() Option {
	return func(o *options) { o.quiet = true }
}

// New builds a zap.Logger from the given options.
func New(opts ...Option) *zap.Logger {
	cfg := options{format: "console"}
	for _, opt := range opts {
		opt(&cfg)
	}

	level := zapcore.InfoLevel
	switch {
	case cfg.quiet:
		level = zapcore.ErrorLevel
	case cfg.debug:
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = "time"

	var encoder zapcore.Encoder
	if cfg.format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level)
	return zap.New(core)
}
