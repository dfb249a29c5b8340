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
	level, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, zapcore.InfoLevel, level)
}

func TestAdapterWritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	log := NewSlogAdapter().(*slogAdapter).With("component", "poller")
	log.Info("polled", "count", 3)
	log.Debug("detail")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "polled", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "poller", fields["component"])
	assert.EqualValues(t, 3, fields["count"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	Set(zap.New(core))

	Info("dropped")
	Warn("kept")
	Error("kept too")

	assert.Equal(t, 2, logs.Len())
}
