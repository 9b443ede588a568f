// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a leveled key/value logger
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	Fatal(msg string, kv ...any)
	Sync() error
}

// zapLogger wraps zap's SugaredLogger
type zapLogger struct {
	log *zap.SugaredLogger
}

// New creates a new logger at info level
func New() Logger {
	return NewWithLevel("info")
}

// NewWithLevel creates a new logger with specific level
func NewWithLevel(level string) Logger {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	case "fatal":
		lvl = zapcore.FatalLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return &noOpLogger{}
	}

	return &zapLogger{log: log.Named("adserve").Sugar()}
}

// NewLogger creates a new logger with a name
func NewLogger(name string) Logger {
	cfg := zap.NewProductionConfig()

	log, err := cfg.Build()
	if err != nil {
		return &noOpLogger{}
	}

	return &zapLogger{log: log.Named(name).Sugar()}
}

// NoOp returns a no-op logger
func NoOp() Logger {
	return &noOpLogger{}
}

// NoLog is a no-op logger instance
var NoLog = NoOp()

// Debug logs a debug message
func (l *zapLogger) Debug(msg string, kv ...any) {
	l.log.Debugw(msg, kv...)
}

// Info logs an info message
func (l *zapLogger) Info(msg string, kv ...any) {
	l.log.Infow(msg, kv...)
}

// Warn logs a warning message
func (l *zapLogger) Warn(msg string, kv ...any) {
	l.log.Warnw(msg, kv...)
}

// Error logs an error message
func (l *zapLogger) Error(msg string, kv ...any) {
	l.log.Errorw(msg, kv...)
}

// Fatal logs a fatal message and exits
func (l *zapLogger) Fatal(msg string, kv ...any) {
	l.log.Fatalw(msg, kv...)
}

// Sync flushes any buffered log entries
func (l *zapLogger) Sync() error {
	return l.log.Sync()
}

// noOpLogger is a logger that does nothing
type noOpLogger struct{}

func (n *noOpLogger) Debug(msg string, kv ...any) {}
func (n *noOpLogger) Info(msg string, kv ...any)  {}
func (n *noOpLogger) Warn(msg string, kv ...any)  {}
func (n *noOpLogger) Error(msg string, kv ...any) {}
func (n *noOpLogger) Fatal(msg string, kv ...any) {}
func (n *noOpLogger) Sync() error                 { return nil }
