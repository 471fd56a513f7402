package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplace_RoutesPackageFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Replace(zap.New(core))
	defer Replace(prev)

	Warn("cover resolution failed", String("path", "covers/a.jpg"), ErrorField(errors.New("boom")))
	Info("ignored field types", Int("n", 1), Bool("ok", true))

	assert.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "covers/a.jpg", entry.ContextMap()["path"])
}

func TestL_NopBeforeInit(t *testing.T) {
	prev := Replace(nil)
	defer Replace(prev)

	assert.NotPanics(t, func() { Error("nothing configured") })
}

func TestLogLevel_zapLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, WarnLevel.zapLevel())
	assert.Equal(t, zapcore.DebugLevel, LogLevel("verbose").zapLevel())
}
