// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package config loads and validates mnemo configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Config is the top-level mnemo configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Session    SessionConfig    `mapstructure:"session"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
}

// ServerConfig controls how mnemo listens for connections.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// StorageConfig selects the checkpoint backend.
type StorageConfig struct {
	Backend string       `mapstructure:"backend"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig holds sqlite backend settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// MemoryConfig tunes the trim-and-summarize policy.
type MemoryConfig struct {
	Threshold        int           `mapstructure:"threshold"`
	KeepRecent       int           `mapstructure:"keep_recent"`
	SummarizeTimeout time.Duration `mapstructure:"summarize_timeout"`
}

// SessionConfig tunes per-session commit serialisation.
type SessionConfig struct {
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// CheckpointConfig tunes automatic checkpointing. AutoEvery 0 disables it.
type CheckpointConfig struct {
	AutoEvery int `mapstructure:"auto_every"`
}

// SummarizerConfig selects and configures the summary provider.
type SummarizerConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix MNEMO_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, mnemoerr.Errorf(mnemoerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a Config from an already-populated
// Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// SetupEnv binds MNEMO_-prefixed environment variables to config keys.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// SetDefaults installs the built-in default for every config key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "127.0.0.1:18790")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.sqlite.path", "mnemo.db")
	v.SetDefault("memory.threshold", 10)
	v.SetDefault("memory.keep_recent", 6)
	v.SetDefault("memory.summarize_timeout", 30*time.Second)
	v.SetDefault("session.busy_timeout", 5*time.Second)
	v.SetDefault("checkpoint.auto_every", 0)
	v.SetDefault("summarizer.provider", "static")
}

// Validate checks the configuration for logical errors. It collects every
// issue found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateMemory()...)
	errs = append(errs, c.validateSummarizer()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		return append(errs, mnemoerr.New(mnemoerr.CodeConfigValidateInvalidValue,
			"config: server.listen must not be empty"))
	}

	// Host can be empty (e.g. ":8080"), which is valid.
	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		return append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w", c.Server.Listen, err))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, mnemoerr.New(mnemoerr.CodeConfigValidateInvalidValue,
				"config: storage.sqlite.path must not be empty when storage.backend is sqlite"))
		}
	default:
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [memory, sqlite], got %q", c.Storage.Backend))
	}

	return errs
}

func (c *Config) validateMemory() []error {
	var errs []error

	if c.Memory.Threshold <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: memory.threshold must be greater than 0, got %d", c.Memory.Threshold))
	}

	if c.Memory.KeepRecent <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: memory.keep_recent must be greater than 0, got %d", c.Memory.KeepRecent))
	} else if c.Memory.Threshold > 0 && c.Memory.KeepRecent > c.Memory.Threshold {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: memory.keep_recent (%d) must not exceed memory.threshold (%d)",
			c.Memory.KeepRecent, c.Memory.Threshold))
	}

	if c.Memory.SummarizeTimeout <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: memory.summarize_timeout must be greater than 0, got %s", c.Memory.SummarizeTimeout))
	}

	if c.Session.BusyTimeout <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: session.busy_timeout must be greater than 0, got %s", c.Session.BusyTimeout))
	}

	if c.Checkpoint.AutoEvery < 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: checkpoint.auto_every must not be negative, got %d", c.Checkpoint.AutoEvery))
	}

	return errs
}

func (c *Config) validateSummarizer() []error {
	var errs []error

	validProviders := map[string]bool{"static": true, "anthropic": true, "openai": true, "google": true}
	if !validProviders[c.Summarizer.Provider] {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: summarizer.provider must be one of [static, anthropic, openai, google], got %q",
			c.Summarizer.Provider))
	}

	return errs
}
