package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" WARN "))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestZapLogger_WritesFieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &ZapLogger{l: zap.New(core)}

	log.Info("estoque ajustado", map[string]interface{}{"product_id": "abc", "quantity": 3})
	log.Error("falha no repositório", errors.New("boom"))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "estoque ajustado", entries[0].Message)
		assert.Equal(t, "abc", entries[0].ContextMap()["product_id"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	}
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &ZapLogger{l: zap.New(core)}

	log.Debug("invisível", nil)
	log.Warn("visível", nil)

	assert.Equal(t, 1, logs.Len())
}
