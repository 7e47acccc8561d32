package config

import (
	"log/slog"
	"strings"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// UnmarshalText folds case so "INFO" and "info" are the same level.
func (l *LogLevel) UnmarshalText(b []byte) error {
	*l = LogLevel(strings.ToLower(strings.TrimSpace(string(b))))
	return nil
}

// UnmarshalText folds case.
func (f *LogFormat) UnmarshalText(b []byte) error {
	*f = LogFormat(strings.ToLower(strings.TrimSpace(string(b))))
	return nil
}

// Valid reports whether l is a known level.
func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// Valid reports whether f is a known format.
func (f LogFormat) Valid() bool {
	return f == LogFormatJSON || f == LogFormatText
}

// SlogLevel maps l onto slog. Unknown levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
