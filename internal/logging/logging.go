// Package logging builds the zap logger used by the CLI: a console core on
// stderr and, when a file is configured, a JSON core written through a
// rotating file.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction.
type Config struct {
	// Debug lowers the console level from warn to debug.
	Debug bool

	// File, when set, receives every info-and-above entry as JSON lines.
	File string

	// MaxSizeMB, MaxBackups and MaxAgeDays bound the rotated log files.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig returns console-only logging at warn level.
func DefaultConfig() Config {
	return Config{
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// ConfigFromEnv applies STEPCHECK_LOG_FILE and STEPCHECK_DEBUG over the
// defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.File = os.Getenv("STEPCHECK_LOG_FILE")
	switch os.Getenv("STEPCHECK_DEBUG") {
	case "1", "true", "yes":
		cfg.Debug = true
	}
	return cfg
}

// New builds a logger from cfg. Call Sync before exit.
func New(cfg Config) *zap.Logger {
	consoleLevel := zap.WarnLevel
	if cfg.Debug {
		consoleLevel = zap.DebugLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			zapcore.AddSync(rotator),
			fileLevel(cfg.Debug),
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func fileEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.MessageKey = "message"
	ec.LevelKey = "level"
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}

func fileLevel(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}
