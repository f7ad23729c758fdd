package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// #region options
// Options selects how the command-line logger renders.
type Options struct {
	Verbose bool
	// JSON switches from console output to one JSON object per line.
	JSON bool
}
// #endregion options

// #region new
// New builds the process logger. Output goes to stderr so the summary can
// be piped from stdout.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !opts.JSON {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
// #endregion new
