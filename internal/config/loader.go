package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/roombook-console/internal/logging"
)

// Config captures environment driven configuration values for the console
// server and the roomctl CLI.
type Config struct {
	BackendURL      string
	HTTPPort        int
	StateDSN        string
	StateSecret     string
	RequestTimeout  time.Duration
	DefaultPageSize int
	LogLevel        slog.Level
}

// Requirement selects which optional secrets are mandatory for a binary.
type Requirement int

const (
	// RequireBackend only insists on the backend base URL.
	RequireBackend Requirement = iota
	// RequireLocalState additionally insists on the secret used to seal
	// tokens persisted by the CLI.
	RequireLocalState
)

// DotEnvFile is loaded before the environment is read when it exists.
const DotEnvFile = ".env"

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is applied first; variables already
// present in the environment win. Missing and invalid variables are collected
// and reported together.
func Load(req Requirement) (Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", DotEnvFile, err)
	}

	cfg := Config{
		HTTPPort:        8081,
		StateDSN:        "console-state.db",
		DefaultPageSize: 10,
		LogLevel:        slog.LevelInfo,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if backend := strings.TrimSpace(os.Getenv("CONSOLE_BACKEND_URL")); backend == "" {
		missing = append(missing, "CONSOLE_BACKEND_URL")
	} else {
		cfg.BackendURL = strings.TrimRight(backend, "/")
	}

	if portValue := strings.TrimSpace(os.Getenv("CONSOLE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "CONSOLE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONSOLE_STATE_DSN")); dsn != "" {
		cfg.StateDSN = dsn
	}

	secret := strings.TrimSpace(os.Getenv("CONSOLE_STATE_SECRET"))
	if secret == "" && req == RequireLocalState {
		missing = append(missing, "CONSOLE_STATE_SECRET")
	}
	cfg.StateSecret = secret

	if timeoutValue := strings.TrimSpace(os.Getenv("CONSOLE_REQUEST_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout < 0 {
			invalid = append(invalid, "CONSOLE_REQUEST_TIMEOUT")
		} else {
			cfg.RequestTimeout = timeout
		}
	}

	if sizeValue := strings.TrimSpace(os.Getenv("CONSOLE_DEFAULT_PAGE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "CONSOLE_DEFAULT_PAGE_SIZE")
		} else {
			cfg.DefaultPageSize = size
		}
	}

	if levelValue := os.Getenv("CONSOLE_LOG_LEVEL"); levelValue != "" {
		level, ok := logging.ParseLevel(levelValue)
		if !ok {
			invalid = append(invalid, "CONSOLE_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
