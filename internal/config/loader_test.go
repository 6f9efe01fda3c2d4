package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"CONSOLE_BACKEND_URL",
	"CONSOLE_HTTP_PORT",
	"CONSOLE_STATE_DSN",
	"CONSOLE_STATE_SECRET",
	"CONSOLE_REQUEST_TIMEOUT",
	"CONSOLE_DEFAULT_PAGE_SIZE",
	"CONSOLE_LOG_LEVEL",
}

// clearEnv registers every key with t.Setenv so the originals are restored,
// then unsets them for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

// chdir switches into an empty directory so a developer's .env file does not
// leak into the assertions.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		chdir(t, t.TempDir())
		t.Setenv("CONSOLE_BACKEND_URL", "http://booking.internal/")

		cfg, err := Load(RequireBackend)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.BackendURL != "http://booking.internal" {
			t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.BackendURL)
		}
		if cfg.HTTPPort != 8081 {
			t.Fatalf("expected default HTTP port 8081, got %d", cfg.HTTPPort)
		}
		if cfg.StateDSN != "console-state.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.StateDSN)
		}
		if cfg.DefaultPageSize != 10 {
			t.Fatalf("expected default page size 10, got %d", cfg.DefaultPageSize)
		}
		if cfg.RequestTimeout != 0 {
			t.Fatalf("expected no request timeout by default, got %s", cfg.RequestTimeout)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected info level, got %v", cfg.LogLevel)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)
		chdir(t, t.TempDir())

		_, err := Load(RequireLocalState)
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: CONSOLE_BACKEND_URL, CONSOLE_STATE_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports invalid values together", func(t *testing.T) {
		clearEnv(t)
		chdir(t, t.TempDir())
		t.Setenv("CONSOLE_BACKEND_URL", "http://booking.internal")
		t.Setenv("CONSOLE_HTTP_PORT", "http")
		t.Setenv("CONSOLE_DEFAULT_PAGE_SIZE", "0")
		t.Setenv("CONSOLE_LOG_LEVEL", "loud")

		_, err := Load(RequireBackend)
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "environment variables have invalid values: CONSOLE_HTTP_PORT, CONSOLE_DEFAULT_PAGE_SIZE, CONSOLE_LOG_LEVEL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		chdir(t, t.TempDir())
		t.Setenv("CONSOLE_BACKEND_URL", "http://booking.internal")
		t.Setenv("CONSOLE_HTTP_PORT", "9090")
		t.Setenv("CONSOLE_STATE_DSN", "/tmp/state.db")
		t.Setenv("CONSOLE_STATE_SECRET", "seal-me")
		t.Setenv("CONSOLE_REQUEST_TIMEOUT", "15s")
		t.Setenv("CONSOLE_DEFAULT_PAGE_SIZE", "20")
		t.Setenv("CONSOLE_LOG_LEVEL", "debug")

		cfg, err := Load(RequireLocalState)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.StateDSN != "/tmp/state.db" {
			t.Fatalf("unexpected DSN: %q", cfg.StateDSN)
		}
		if cfg.StateSecret != "seal-me" {
			t.Fatalf("unexpected secret: %q", cfg.StateSecret)
		}
		if cfg.RequestTimeout != 15*time.Second {
			t.Fatalf("expected 15s timeout, got %s", cfg.RequestTimeout)
		}
		if cfg.DefaultPageSize != 20 {
			t.Fatalf("expected page size 20, got %d", cfg.DefaultPageSize)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug level, got %v", cfg.LogLevel)
		}
	})

	t.Run("reads a dotenv file without overriding the environment", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		chdir(t, dir)

		content := "CONSOLE_BACKEND_URL=http://from-dotenv\nCONSOLE_HTTP_PORT=7000\n"
		if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0o600); err != nil {
			t.Fatalf("write .env: %v", err)
		}
		t.Setenv("CONSOLE_HTTP_PORT", "7100")

		cfg, err := Load(RequireBackend)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.BackendURL != "http://from-dotenv" {
			t.Fatalf("expected backend URL from .env, got %q", cfg.BackendURL)
		}
		if cfg.HTTPPort != 7100 {
			t.Fatalf("expected environment to win over .env, got %d", cfg.HTTPPort)
		}
	})
}
