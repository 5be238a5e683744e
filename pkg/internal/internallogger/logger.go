// Package internallogger adapts zap to the library's Logger interface. A
// single adapter fans log entries out to its registered sinks; components
// talk to it only through types.Logger.
package internallogger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOption mutates the zap configuration before the adapter is built.
type LoggerOption func(*zap.Config, *zapcore.Level)

// ZapLoggerAdapter implements types.Logger on top of zap.
type ZapLoggerAdapter struct {
	mu           sync.Mutex
	logger       *zap.Logger
	atomicLevel  zap.AtomicLevel
	development  bool
	defaultCore  zapcore.Core
	sinks        map[string]zapcore.Core
	combinedCore zapcore.Core
}

// NewLogger initializes a new ZapLoggerAdapter with configurable options.
func NewLogger(options ...LoggerOption) *ZapLoggerAdapter {
	config := zap.NewProductionConfig()
	level := zapcore.InfoLevel

	for _, option := range options {
		option(&config, &level)
	}

	atomicLevel := zap.NewAtomicLevelAt(level)
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	defaultCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(os.Stdout), atomicLevel)

	logger := zap.New(defaultCore)
	if config.Development {
		logger = logger.WithOptions(zap.Development())
	}

	return &ZapLoggerAdapter{
		logger:       logger,
		atomicLevel:  atomicLevel,
		development:  config.Development,
		defaultCore:  defaultCore,
		sinks:        make(map[string]zapcore.Core),
		combinedCore: defaultCore,
	}
}

// rebuildLocked recomposes the tee of the default core and all sinks. Callers
// must hold mu.
func (z *ZapLoggerAdapter) rebuildLocked() {
	cores := make([]zapcore.Core, 0, len(z.sinks)+1)
	cores = append(cores, z.defaultCore)
	for _, core := range z.sinks {
		cores = append(cores, core)
	}
	z.combinedCore = zapcore.NewTee(cores...)
	logger := zap.New(z.combinedCore)
	if z.development {
		logger = logger.WithOptions(zap.Development())
	}
	z.logger = logger
}
