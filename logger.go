package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Unknown levels fall back to info,
// unknown encodings to console.
func NewLogger(level, encoding string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		name = "info"
	}
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info\n", level)
		lvl.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	enc := strings.ToLower(encoding)
	if enc != "json" {
		enc = "console"
	}

	zcfg := zap.Config{
		Level:             lvl,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          enc,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
