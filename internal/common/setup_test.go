package common

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitializeLogger_ReplacesGlobalLogger(t *testing.T) {
	previous := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(previous) })

	zap.ReplaceGlobals(zap.NewNop())
	if zap.L().Core().Enabled(zapcore.FatalLevel) {
		t.Fatal("Expected the no-op logger to drop fatal entries")
	}

	logger, cleanup := InitializeLogger()
	defer cleanup()

	if zap.L() != logger {
		t.Error("Expected InitializeLogger to install the returned logger globally")
	}
	if !zap.L().Core().Enabled(zapcore.FatalLevel) {
		t.Error("Expected fatal entries to reach the global logger")
	}
	if !zap.L().Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info entries to reach the global logger")
	}
}
