// Package logging builds the zap loggers used by Inkwell.
//
// The file sink writes JSON lines with ISO8601 timestamps and capital
// level names, rotated by lumberjack. An optional console sink writes a
// human-readable rendition of the same entries.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level zapcore.Level

	// File is the path of the rotated JSON log. Empty disables it.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Console receives human-readable entries. Nil disables it.
	Console io.Writer
}

// DefaultOptions returns info-level options logging to stderr only.
func DefaultOptions() Options {
	return Options{
		Level:      zapcore.InfoLevel,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
		Console:    os.Stderr,
	}
}

// EncoderConfig returns the JSON encoder settings of the file sink.
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New builds a logger from opts. With neither sink configured it returns
// a no-op logger.
func New(opts Options) *zap.Logger {
	var cores []zapcore.Core
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(EncoderConfig()),
			zapcore.AddSync(rotator),
			opts.Level,
		))
	}
	if opts.Console != nil {
		cores = append(cores, NewConsoleCore(opts.Console, opts.Level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// NewConsoleCore returns a core writing development-style entries to w.
func NewConsoleCore(w io.Writer, level zapcore.LevelEnabler) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
}
