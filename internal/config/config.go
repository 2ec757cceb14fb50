// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/removebg"
)

// Environment variable names.
const (
	EnvLogLevel      = "PHOTO_EDITOR_LOG_LEVEL"
	EnvJPEGQuality   = "PHOTO_EDITOR_JPEG_QUALITY"
	EnvMaxInputBytes = "PHOTO_EDITOR_MAX_INPUT_BYTES"
	EnvAPIKey        = "REMOVE_BG_API_KEY"
	EnvEndpoint      = "REMOVE_BG_ENDPOINT"
	EnvTimeout       = "REMOVE_BG_TIMEOUT"
)

// Config holds every setting of the server.
type Config struct {
	LogLevel      slog.Level
	JPEGQuality   int
	MaxInputBytes int64
	RemoveBG      removebg.Config
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		LogLevel:      slog.LevelInfo,
		JPEGQuality:   imaging.DefaultJPEGQuality,
		MaxInputBytes: imaging.DefaultMaxInputBytes,
		RemoveBG: removebg.Config{
			Endpoint: removebg.DefaultEndpoint,
			Timeout:  removebg.DefaultTimeout,
		},
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load reads the configuration through getenv. Unset or empty variables keep
// their defaults; malformed values are all reported together.
func Load(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
		}
	}

	if v := strings.TrimSpace(getenv(EnvJPEGQuality)); v != "" {
		q, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", EnvJPEGQuality, err))
		case q < 1 || q > 100:
			errs = append(errs, fmt.Errorf("%s: %d out of range 1-100", EnvJPEGQuality, q))
		default:
			cfg.JPEGQuality = q
		}
	}

	if v := strings.TrimSpace(getenv(EnvMaxInputBytes)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", EnvMaxInputBytes, err))
		case n <= 0:
			errs = append(errs, fmt.Errorf("%s: must be positive", EnvMaxInputBytes))
		default:
			cfg.MaxInputBytes = n
		}
	}

	cfg.RemoveBG.APIKey = strings.TrimSpace(getenv(EnvAPIKey))

	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		cfg.RemoveBG.Endpoint = v
	}

	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimeout, err))
		case d <= 0:
			errs = append(errs, fmt.Errorf("%s: must be positive", EnvTimeout))
		default:
			cfg.RemoveBG.Timeout = d
		}
	}

	return cfg, errors.Join(errs...)
}
