package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// isolate points HOME at an empty dir and clears every variable Load reads.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"TODO_CONFIG", "PORT", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "TODO_USE_LOCAL",
		"TODO_API_URL", "TODO_STORAGE", "TODO_STORAGE_DIR", "TODO_STORAGE_KEY",
		"REDIS_URL", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("expected defaults %+v, got %+v", want, cfg)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Addr())
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
port = 9090
use_local = true
storage = "redis"
redis_url = "redis://cache:6379/1"
shutdown_timeout = "3s"
log_level = "debug"
`)
	t.Setenv("PORT", "7070")
	t.Setenv("TODO_STORAGE_KEY", "other_tasks")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != 7070 {
		t.Errorf("expected env to override port, got %d", cfg.Port)
	}
	if !cfg.UseLocal {
		t.Error("expected use_local from file")
	}
	if cfg.Storage != StorageRedis || cfg.RedisURL != "redis://cache:6379/1" {
		t.Errorf("unexpected storage settings: %s %s", cfg.Storage, cfg.RedisURL)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected 3s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.StorageKey != "other_tasks" {
		t.Errorf("expected storage key from env, got %s", cfg.StorageKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level from file, got %s", cfg.LogLevel)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_CONFIG", writeConfig(t, `api_url = "https://tasks.example.com/api"`))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.APIURL != "https://tasks.example.com/api" {
		t.Errorf("expected api url from TODO_CONFIG file, got %s", cfg.APIURL)
	}
}

func TestLoad_UserConfigFile(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("HOME"), ".config", "todolist")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("log_format = \"json\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected log format from user config, got %s", cfg.LogFormat)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		missing bool
		wantErr string
	}{
		{name: "explicit file missing", missing: true, wantErr: "config file"},
		{name: "bad toml", file: "port = ", wantErr: "parsing config file"},
		{name: "unknown key", file: `colour = "red"`, wantErr: "unknown key"},
		{name: "bad port env", env: map[string]string{"PORT": "http"}, wantErr: "PORT"},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}, wantErr: "port must be"},
		{name: "bad bool env", env: map[string]string{"TODO_USE_LOCAL": "maybe"}, wantErr: "TODO_USE_LOCAL"},
		{name: "bad duration env", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}, wantErr: "SHUTDOWN_TIMEOUT"},
		{name: "unknown storage", env: map[string]string{"TODO_STORAGE": "s3"}, wantErr: "storage must be"},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "log level"},
		{name: "unknown log format", file: `log_format = "xml"`, wantErr: "log format"},
		{name: "remote without url", file: `api_url = "  "`, wantErr: "api_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			if tt.missing {
				path = filepath.Join(t.TempDir(), "nope.toml")
			}

			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
