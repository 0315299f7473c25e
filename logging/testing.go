package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger returns a new Debug+ logger that writes through the test's Log method so lines
// are attributed to the right test, even when tests run in parallel.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	tb.Helper()
	logger := newImpl("", zap.NewAtomicLevelAt(zapcore.DebugLevel))
	logger.addCore(zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel)).Core())

	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	logger.addCore(observerCore)

	return logger, observedLogs
}
