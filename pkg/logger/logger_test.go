package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestWithContextAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := (&Logger{Logger: zap.New(core)}).Named("desk").WithContext("corr-1", "emp-1")

	log.Info("case created", zap.String("case_id", "c-1"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "desk", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "corr-1", fields["correlation_id"])
	assert.Equal(t, "emp-1", fields["user_id"])
	assert.Equal(t, "c-1", fields["case_id"])
}

func TestGlobal(t *testing.T) {
	prev := Global()
	defer SetGlobal(prev)

	l := NewNop()
	SetGlobal(l)
	assert.Same(t, l, Global())
}
