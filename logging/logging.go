// Package logging builds the two-destination zap logger used by winnow:
// the log file receives everything from debug up, stderr receives info
// and above.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New opens the log file at logPath and returns a logger teeing every
// entry to it and to stderr, plus a close function that flushes the
// logger and releases the file. The log directory is created if needed.
func New(logPath string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory for %q: %w", logPath, err)
	}

	fileSink, closeFile, err := zap.Open(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %q: %w", logPath, err)
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, fileSink, zapcore.DebugLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.InfoLevel),
	)

	logger := zap.New(core)
	closer := func() {
		_ = logger.Sync()
		closeFile()
	}
	return logger, closer, nil
}

// encoderConfig renders entries as "time - LEVEL - name - message".
func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}
