package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
		AddSource:   false,
	}

	InitLoggerWithWriter(config, &buf)

	// Log a test message
	Info("test message", "key", "value", "number", 42)

	// Parse JSON output
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	// Verify base attributes
	if logEntry["service"] != "test-service" {
		t.Errorf("Expected service=test-service, got %v", logEntry["service"])
	}

	if logEntry["version"] != "1.0.0" {
		t.Errorf("Expected version=1.0.0, got %v", logEntry["version"])
	}

	if logEntry["environment"] != "test" {
		t.Errorf("Expected environment=test, got %v", logEntry["environment"])
	}

	// Verify message
	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}

	// Verify level
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level=INFO, got %v", logEntry["level"])
	}

	// Verify custom attributes
	if logEntry["key"] != "value" {
		t.Errorf("Expected key=value, got %v", logEntry["key"])
	}

	if logEntry["number"] != float64(42) {
		t.Errorf("Expected number=42, got %v", logEntry["number"])
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-req-123")

	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		t.Fatal("Expected request id in context")
	}
	if requestID != "test-req-123" {
		t.Errorf("Expected request_id=test-req-123, got %s", requestID)
	}

	// Test with logger
	log := FromContext(ctx)
	if log == nil {
		t.Error("Expected non-nil logger")
	}
}

func TestPreset(t *testing.T) {
	tests := []struct {
		env       string
		wantEnv   string
		level     string
		format    string
		addSource bool
	}{
		{"", EnvDevelopment, LogLevelDebug, LogFormatText, true},
		{"dev", EnvDevelopment, LogLevelDebug, LogFormatText, true},
		{"Development", "development", LogLevelDebug, LogFormatText, true},
		{"staging", EnvStaging, LogLevelInfo, LogFormatJSON, true},
		{"production", "production", LogLevelInfo, LogFormatJSON, false},
		{"prod", EnvProduction, LogLevelInfo, LogFormatJSON, false},
		{"qa", "qa", LogLevelDebug, LogFormatText, true},
	}
	for _, tt := range tests {
		cfg := Preset(tt.env)
		if cfg.Environment != tt.wantEnv {
			t.Errorf("Preset(%q).Environment = %q, want %q", tt.env, cfg.Environment, tt.wantEnv)
		}
		if cfg.Level != tt.level || cfg.Format != tt.format || cfg.AddSource != tt.addSource {
			t.Errorf("Preset(%q) = %+v, want level=%s format=%s addSource=%v", tt.env, cfg, tt.level, tt.format, tt.addSource)
		}
		if cfg.ServiceName != DefaultServiceName {
			t.Errorf("Preset(%q).ServiceName = %q", tt.env, cfg.ServiceName)
		}
	}
}

func TestOverride(t *testing.T) {
	cfg := Preset("prod").Override(Config{Level: "debug", ServiceName: "realm-test", AddSource: true})
	if cfg.Level != "debug" || cfg.ServiceName != "realm-test" {
		t.Errorf("Expected level and service to be overridden, got %+v", cfg)
	}
	if cfg.Format != LogFormatJSON || cfg.Version != ProductionVersion || cfg.Environment != EnvProduction {
		t.Errorf("Expected empty fields to keep the preset, got %+v", cfg)
	}
	if cfg.AddSource {
		t.Error("Expected AddSource to come from the preset")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"warn+2", slog.LevelWarn + 2, false},
		{"loud", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if lvl := (Config{Level: "loud"}).LogLevel(); lvl != slog.LevelInfo {
		t.Errorf("Expected unparsable level to fall back to info, got %v", lvl)
	}
}

func TestFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: "debug", Format: "json", ServiceName: "svc"}, &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Debug("scoped")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("Expected request_id=req-42, got %v", entry["request_id"])
	}
}

func TestTextFormatRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: "warn", Format: "text"}, &buf)

	Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buf.String())
	}
	Warn("shown")
	if buf.Len() == 0 {
		t.Error("Expected warn message to be written")
	}
}
