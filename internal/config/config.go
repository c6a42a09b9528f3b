package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	defaultListenAddr = ":8080"
	defaultDBPath     = "tessera.db"
	defaultWorkerName = "worker-0"
	defaultDevices    = "cpu:0"

	envListenAddr = "TESSERA_LISTEN_ADDR"
	envDBPath     = "TESSERA_DB_PATH"
	envLogLevel   = "TESSERA_LOG_LEVEL"
	envWorkerName = "TESSERA_WORKER_NAME"
	envDevices    = "TESSERA_DEVICES"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level
	WorkerName string
	Devices    []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Config{
		ListenAddr: defaultListenAddr,
		DBPath:     defaultDBPath,
		LogLevel:   slog.LevelInfo,
		WorkerName: defaultWorkerName,
		Devices:    parseDevices(defaultDevices),
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envWorkerName); v != "" {
		cfg.WorkerName = v
	}
	if v := os.Getenv(envDevices); v != "" {
		cfg.Devices = parseDevices(v)
	}

	return cfg
}

// parseDevices splits a comma-separated device name list, dropping empty
// entries.
func parseDevices(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
