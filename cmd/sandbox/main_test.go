package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/physlink/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.Logging{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = newLogger(config.Logging{Level: "nonsense", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestSameFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.True(t, sameFile("sandbox.yaml", filepath.Join(wd, "sandbox.yaml")))
	assert.True(t, sameFile("./rules/../rules/damage.tengo", "rules/damage.tengo"))
	assert.False(t, sameFile("a.yaml", "b.yaml"))
}
