// Package logging - Logger setup tests
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestNamedUsesGlobalLogger proves component loggers follow SetLogger
func TestNamedUsesGlobalLogger(t *testing.T) {
	prev := L()
	defer SetLogger(prev)

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	Named("engine").Warn("ambiguous pricing", zap.String("channel", "Online"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "engine" {
		t.Errorf("Expected logger name engine, got %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["channel"] != "Online" {
		t.Errorf("Expected channel field, got %v", entries[0].ContextMap())
	}
}

// TestInitializeFileOutput writes JSON lines to a file and falls back to info
func TestInitializeFileOutput(t *testing.T) {
	prev := L()
	defer SetLogger(prev)

	path := filepath.Join(t.TempDir(), "pricing.log")
	if err := Initialize(Config{Level: "loud", Format: "json", Output: path}); err != nil {
		t.Fatalf("Expected initialize, got error: %v", err)
	}

	Named("tax").Debug("hidden")
	Named("tax").Info("selected taxes")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file, got error: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug suppressed at info level, got %s", out)
	}
	if !strings.Contains(out, `"logger":"tax"`) || !strings.Contains(out, "selected taxes") {
		t.Errorf("Expected named info entry, got %s", out)
	}
}

// TestInitializeBadOutput rejects an unwritable path
func TestInitializeBadOutput(t *testing.T) {
	prev := L()
	defer SetLogger(prev)

	bad := filepath.Join(t.TempDir(), "missing", "pricing.log")
	if err := Initialize(Config{Level: "info", Output: bad}); err == nil {
		t.Error("Expected error for missing directory")
	}
}
