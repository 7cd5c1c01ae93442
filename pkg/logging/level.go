package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a logger emits
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
// Anything else yields InfoLevel.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WarnLevel
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil || level < DebugLevel || level > ErrorLevel {
		return InfoLevel
	}
	return level
}

// Format selects the encoder used for log output
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)
