package monitoring

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	// Save original logger
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}

func TestWarnf(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetWarnLogger(nil)
	}()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})

	Warnf("resolution %g ignored", 0.5)
	if len(got) != 1 || got[0] != "WARNING: resolution 0.5 ignored" {
		t.Errorf("Warnf via Logf = %q", got)
	}

	var warned []string
	SetWarnLogger(func(format string, v ...interface{}) {
		warned = append(warned, fmt.Sprintf(format, v...))
	})
	Warnf("pair %d", 3)
	if len(warned) != 1 || warned[0] != "pair 3" {
		t.Errorf("Warnf via warn logger = %q", warned)
	}
	if len(got) != 1 {
		t.Errorf("Logf should not receive routed warnings, got %q", got)
	}
}

func TestUseZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := UseZap(zap.New(core))
	defer restore()

	Logf("Temperature: %.3f", 9.5)
	Warnf("upsample ignored")

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].Message != "Temperature: 9.500" {
		t.Errorf("info entry = %v %q", entries[0].Level, entries[0].Message)
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].Message != "upsample ignored" {
		t.Errorf("warn entry = %v %q", entries[1].Level, entries[1].Message)
	}
}
