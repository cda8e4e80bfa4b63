// Package telemetry builds the process-wide structured logger passed down
// into the indexer and query engine at construction time.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. debug selects development encoding (colored
// console output, debug level); otherwise production JSON encoding at info
// level is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.AddCaller())
}

// NewNop returns a logger that discards everything, for tests and library
// callers that supply their own.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
