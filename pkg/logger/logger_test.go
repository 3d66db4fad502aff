package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestError_AttachesErrorField(t *testing.T) {
	log, logs := observed()

	log.Error("Charge transaction failed", errors.New("deadlock"), zap.String("user_id", "u1"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "deadlock", fields["error"])
	assert.Equal(t, "u1", fields["user_id"])
}

func TestNamedAndWith(t *testing.T) {
	log, logs := observed()

	log.Named("reset_worker").With(zap.String("queue", "reset")).Infof("swept %d users", 3)

	entry := logs.All()[0]
	assert.Equal(t, "reset_worker", entry.LoggerName)
	assert.Equal(t, "swept 3 users", entry.Message)
	assert.Equal(t, "reset", entry.ContextMap()["queue"])
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	assert.Panics(t, func() { NewLogger("production") })
}

func TestNewLogger_HonorsLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	log := NewLogger("production")

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
