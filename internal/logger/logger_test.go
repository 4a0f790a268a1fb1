package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"critical", zapcore.FatalLevel},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.name)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level name")
	}
}

func TestNew_UnknownEnv(t *testing.T) {
	if _, _, err := New("staging", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestLevel_SetLevel(t *testing.T) {
	logger, level, err := New("local", "info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should start disabled at info level")
	}
	if err := level.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled after SetLevel")
	}
	if err := level.SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level name")
	}
}
