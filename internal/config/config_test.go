// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-dev/mnemo/internal/config"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:18790", cfg.Server.Listen)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 10, cfg.Memory.Threshold)
	assert.Equal(t, 6, cfg.Memory.KeepRecent)
	assert.Equal(t, 30*time.Second, cfg.Memory.SummarizeTimeout)
	assert.Equal(t, 5*time.Second, cfg.Session.BusyTimeout)
	assert.Equal(t, 0, cfg.Checkpoint.AutoEvery)
	assert.Equal(t, "static", cfg.Summarizer.Provider)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mnemo.yaml")

	content := `
server:
  listen: "0.0.0.0:9999"
storage:
  backend: "sqlite"
  sqlite:
    path: "/tmp/test-mnemo.db"
memory:
  threshold: 20
  keep_recent: 8
summarizer:
  provider: "anthropic"
  api_key: "test-key"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Listen)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/test-mnemo.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 20, cfg.Memory.Threshold)
	assert.Equal(t, 8, cfg.Memory.KeepRecent)
	assert.Equal(t, "anthropic", cfg.Summarizer.Provider)
	assert.Equal(t, "test-key", cfg.Summarizer.APIKey)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MNEMO_SERVER_LISTEN", "10.0.0.1:8080")
	t.Setenv("MNEMO_MEMORY_THRESHOLD", "15")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:8080", cfg.Server.Listen)
	assert.Equal(t, 15, cfg.Memory.Threshold)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	require.Error(t, err)
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mnemo.yaml")

	content := `
storage:
  backend: "redis"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

// validConfig returns a minimal config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Listen: "127.0.0.1:18790"},
		Storage: config.StorageConfig{Backend: "memory"},
		Memory: config.MemoryConfig{
			Threshold:        10,
			KeepRecent:       6,
			SummarizeTimeout: 30 * time.Second,
		},
		Session:    config.SessionConfig{BusyTimeout: 5 * time.Second},
		Summarizer: config.SummarizerConfig{Provider: "static"},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_Listen(t *testing.T) {
	tests := []struct {
		name   string
		listen string
		ok     bool
	}{
		{"valid", "127.0.0.1:18790", true},
		{"empty host", ":8080", true},
		{"empty", "", false},
		{"no port", "127.0.0.1", false},
		{"bad port", "127.0.0.1:banana", false},
		{"port too high", "127.0.0.1:70000", false},
		{"port zero", "127.0.0.1:0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Listen = tt.listen
			errs := cfg.Validate()
			if tt.ok {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidate_SQLiteNeedsPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLite.Path = ""

	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "storage.sqlite.path")
}

func TestValidate_Memory(t *testing.T) {
	t.Run("threshold must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Memory.Threshold = 0
		assert.NotEmpty(t, cfg.Validate())
	})

	t.Run("keep_recent must not exceed threshold", func(t *testing.T) {
		cfg := validConfig()
		cfg.Memory.KeepRecent = 12
		assert.NotEmpty(t, cfg.Validate())
	})

	t.Run("busy_timeout must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Session.BusyTimeout = 0
		assert.NotEmpty(t, cfg.Validate())
	})

	t.Run("auto_every must not be negative", func(t *testing.T) {
		cfg := validConfig()
		cfg.Checkpoint.AutoEvery = -1
		assert.NotEmpty(t, cfg.Validate())
	})
}

func TestValidate_UnknownSummarizerProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Summarizer.Provider = "llamafile"

	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "summarizer.provider")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Listen = ""
	cfg.Storage.Backend = "redis"
	cfg.Memory.Threshold = -1

	errs := cfg.Validate()
	assert.GreaterOrEqual(t, len(errs), 3)
}
