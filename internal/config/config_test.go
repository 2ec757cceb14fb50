package config

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/photo-editor-mcp/internal/removebg"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envMap(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.RemoveBG.APIKey != "" {
		t.Error("API key set without the variable")
	}
}

func TestLoad_AllVariables(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		EnvLogLevel:      "debug",
		EnvJPEGQuality:   " 75 ",
		EnvMaxInputBytes: "1048576",
		EnvAPIKey:        "abc123",
		EnvEndpoint:      "http://localhost:9999/removebg",
		EnvTimeout:       "15s",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		LogLevel:      slog.LevelDebug,
		JPEGQuality:   75,
		MaxInputBytes: 1 << 20,
		RemoveBG: removebg.Config{
			APIKey:   "abc123",
			Endpoint: "http://localhost:9999/removebg",
			Timeout:  15 * time.Second,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"log level", EnvLogLevel, "loud"},
		{"quality not a number", EnvJPEGQuality, "high"},
		{"quality zero", EnvJPEGQuality, "0"},
		{"quality too high", EnvJPEGQuality, "101"},
		{"max bytes negative", EnvMaxInputBytes, "-1"},
		{"max bytes not a number", EnvMaxInputBytes, "lots"},
		{"timeout no unit", EnvTimeout, "30"},
		{"timeout zero", EnvTimeout, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(envMap(map[string]string{tt.key: tt.val}))
			if err == nil {
				t.Fatalf("%s=%q accepted", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error does not name %s: %v", tt.key, err)
			}
		})
	}
}

func TestLoad_ReportsAllErrors(t *testing.T) {
	_, err := Load(envMap(map[string]string{
		EnvJPEGQuality: "999",
		EnvTimeout:     "soon",
	}))
	if err == nil {
		t.Fatal("invalid configuration accepted")
	}
	for _, key := range []string{EnvJPEGQuality, EnvTimeout} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error does not name %s: %v", key, err)
		}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		t.Errorf("quality 999 parsed fine and should not produce a NumError: %v", numErr)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvJPEGQuality, "60")
	t.Setenv(EnvAPIKey, "from-env")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.JPEGQuality != 60 || cfg.RemoveBG.APIKey != "from-env" {
		t.Errorf("got quality %d key %q", cfg.JPEGQuality, cfg.RemoveBG.APIKey)
	}
}
