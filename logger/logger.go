// Package logger builds the zap logger used by the radio tools.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names, from quiet to chatty.
const (
	LevelNone    = "none"
	LevelError   = "error"
	LevelWarning = "warn"
	LevelNormal  = "normal"
	LevelVerbose = "verbose"
	LevelDebug   = "debug"
)

var levels = map[string]zapcore.Level{
	LevelNone:    zapcore.FatalLevel + 1,
	LevelError:   zapcore.ErrorLevel,
	LevelWarning: zapcore.WarnLevel,
	"warning":    zapcore.WarnLevel,
	LevelNormal:  zapcore.InfoLevel,
	"info":       zapcore.InfoLevel,
	LevelVerbose: zapcore.DebugLevel,
	LevelDebug:   zapcore.DebugLevel,
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	lv, ok := levels[strings.ToLower(name)]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return lv, nil
}

// New returns a console logger writing to outputs (stderr if empty).
func New(level string, outputs ...string) (*zap.Logger, error) {
	lv, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lv),
		Encoding:         "console",
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "message",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		},
	}
	return cfg.Build()
}
