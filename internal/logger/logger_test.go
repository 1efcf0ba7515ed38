package logger

import (
	"errors"
	"testing"

	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNew(t *testing.T) {
	log, zapLogger := New("info", false)
	defer Sync(zapLogger)

	assert.NotNil(t, zapLogger)
	assert.NotNil(t, log.GetSink())
	assert.True(t, log.Enabled())
	assert.False(t, log.V(1).Enabled(), "debug output should be off at info level")
}

func TestNew_ErrorLevel(t *testing.T) {
	log, zapLogger := New("error", true)
	defer Sync(zapLogger)

	assert.False(t, log.Enabled(), "info output should be off at error level")
}

func TestLogrFieldsReachZap(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	log := zapr.NewLogger(zap.New(core))

	log.Info("Action invocation completed", "function", "list_databases")
	log.Error(errors.New("boom"), "Action invocation failed", "function", "check_ec2_status")

	entries := obs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "Action invocation completed", entries[0].Message)
		assert.Equal(t, "list_databases", entries[0].ContextMap()["function"])
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	}
}

func TestSync_Nil(t *testing.T) {
	assert.NotPanics(t, func() { Sync(nil) })
}
