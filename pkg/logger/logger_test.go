package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })

	Info("key loaded", zap.String("public_key", "0x1"))
	Error("sign failed")
	Debug("detail")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "key loaded", entries[0].Message)
	assert.Equal(t, "0x1", entries[0].ContextMap()["public_key"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestInit(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init("production"))
	assert.NotNil(t, Log)
	require.NoError(t, Init("development"))
	assert.NotNil(t, Log)
}
