// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-dev/mnemo/internal/config"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Listen: "127.0.0.1:0"},
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

func TestWireEngine_MemoryBackend(t *testing.T) {
	engine, err := WireEngine(testConfig())
	require.NoError(t, err)
	defer engine.Close()

	assert.NotNil(t, engine.Server)
	assert.NotNil(t, engine.Sessions)
	assert.NotNil(t, engine.Checkpoints)
}

func TestWireEngine_SQLiteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "mnemo.db")

	engine, err := WireEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Close())
}

func TestWireEngine_UnknownSummarizer(t *testing.T) {
	cfg := testConfig()
	cfg.Summarizer.Provider = "oracle"

	_, err := WireEngine(cfg)
	require.Error(t, err)
	assert.True(t, mnemoerr.HasCode(err, mnemoerr.CodeSummarizerConfigInvalid))
}

func TestWireEngine_AnthropicWithoutKey(t *testing.T) {
	cfg := testConfig()
	cfg.Summarizer.Provider = "anthropic"

	_, err := WireEngine(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestWireEngine_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = "redis"

	_, err := WireEngine(cfg)
	require.Error(t, err)
}
