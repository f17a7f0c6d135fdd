package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/naqd/naqd/pkg/config"
)

func TestInitLogger_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "naqd.log")
	cfg := &config.LoggingConfig{
		Level:  "INFO",
		Format: "json",
		Output: path,
	}

	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	WithComponent("test").Info("تعليق جديد", zap.String("key", "value"))
	WithComponent("test").Debug("hidden at info level")
	_ = Logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected exactly one log line, got %d: %q", len(lines), string(data))
	}

	var logObj map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "تعليق جديد" {
		t.Errorf("Expected Arabic message preserved, got: %v", logObj["message"])
	}
	if logObj["key"] != "value" {
		t.Errorf("Expected field 'key'='value', got: %v", logObj["key"])
	}
	if logObj["component"] != "test" {
		t.Errorf("Expected component field, got: %v", logObj["component"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}

func TestInitLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	cfg := &config.LoggingConfig{Level: "LOUD", Format: "text", Output: "stderr"}
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if !Logger.Core().Enabled(zap.InfoLevel) {
		t.Error("Expected info level to be enabled")
	}
	if Logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level to be disabled")
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("no span")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	FromContext(ctx, base).Info("with span")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["trace_id"]; ok {
		t.Error("Expected no trace_id without a span")
	}
	fields := entries[1].ContextMap()
	if fields["trace_id"] != sc.TraceID().String() {
		t.Errorf("trace_id = %v, want %s", fields["trace_id"], sc.TraceID())
	}
	if fields["span_id"] != sc.SpanID().String() {
		t.Errorf("span_id = %v, want %s", fields["span_id"], sc.SpanID())
	}
}
