package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(envListenAddr, "")
	t.Setenv(envDBPath, "")
	t.Setenv(envLogLevel, "")
	t.Setenv(envWorkerName, "")
	t.Setenv(envDevices, "")

	cfg := Load()

	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.DBPath != defaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, defaultDBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.WorkerName != defaultWorkerName {
		t.Errorf("WorkerName = %q, want %q", cfg.WorkerName, defaultWorkerName)
	}
	if !reflect.DeepEqual(cfg.Devices, []string{"cpu:0"}) {
		t.Errorf("Devices = %v, want [cpu:0]", cfg.Devices)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(envListenAddr, ":9090")
	t.Setenv(envDBPath, "/tmp/test.db")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envWorkerName, "worker-7")
	t.Setenv(envDevices, "cpu:0, cpu:1,gpu:0")

	cfg := Load()

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.WorkerName != "worker-7" {
		t.Errorf("WorkerName = %q, want %q", cfg.WorkerName, "worker-7")
	}
	want := []string{"cpu:0", "cpu:1", "gpu:0"}
	if !reflect.DeepEqual(cfg.Devices, want) {
		t.Errorf("Devices = %v, want %v", cfg.Devices, want)
	}
}

func TestParseDevices(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"cpu:0", []string{"cpu:0"}},
		{"cpu:0,cpu:1", []string{"cpu:0", "cpu:1"}},
		{" cpu:0 , ,cpu:1,", []string{"cpu:0", "cpu:1"}},
		{",", nil},
	}
	for _, tt := range tests {
		if got := parseDevices(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseDevices(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := parseLogLevel(tt.input)
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerOutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("logger output is not valid JSON: %v\noutput: %s", err, buf.String())
	}

	for _, key := range []string{"time", "level", "msg"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("JSON output missing expected key %q", key)
		}
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want %q", entry["key"], "value")
	}
}
