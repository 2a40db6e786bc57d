package logger

import (
	"errors"
	"testing"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Info("note emitted",
		log.Field().String("key", "shift+q"),
		log.Field().Int("index", 3),
		log.Field().Error("error", errors.New("boom")),
	)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "note emitted", entries[0].Message)
		assert.Equal(t, "shift+q", ctx["key"])
		assert.EqualValues(t, 3, ctx["index"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestLevelMapping(t *testing.T) {
	tests := []struct {
		in   contracts.LogLevel
		want zapcore.Level
	}{
		{contracts.InfoLevel, zapcore.InfoLevel},
		{contracts.DebugLevel, zapcore.DebugLevel},
		{contracts.WarnLevel, zapcore.WarnLevel},
		{contracts.ErrorLevel, zapcore.ErrorLevel},
		{contracts.FatalLevel, zapcore.FatalLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, zapLevel(tt.in))
	}
}

func TestSetLevelFilters(t *testing.T) {
	log := NewZapLogger().(*ZapLogger)
	log.SetLevel(contracts.ErrorLevel)
	assert.False(t, log.level.Enabled(zapcore.WarnLevel))
	assert.True(t, log.level.Enabled(zapcore.ErrorLevel))
}
