// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"errors"
	"log/slog"

	"github.com/mnemo-dev/mnemo/internal/checkpoint"
	_ "github.com/mnemo-dev/mnemo/internal/checkpoint/sqlite" // register sqlite backend
	"github.com/mnemo-dev/mnemo/internal/config"
	"github.com/mnemo-dev/mnemo/internal/conversation"
	"github.com/mnemo-dev/mnemo/internal/server"
	"github.com/mnemo-dev/mnemo/internal/summarizer"
	anthropicsum "github.com/mnemo-dev/mnemo/internal/summarizer/anthropic"
	googlesum "github.com/mnemo-dev/mnemo/internal/summarizer/google"
	openaisum "github.com/mnemo-dev/mnemo/internal/summarizer/openai"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Engine holds all wired subsystems and manages their lifecycle.
type Engine struct {
	Server      *server.Server
	Sessions    *conversation.Store
	Checkpoints *checkpoint.Manager
}

// summarizerFactory builds a conversation.Summarizer from config.
type summarizerFactory func(config.SummarizerConfig) (conversation.Summarizer, error)

// summarizerFactories maps provider names to their constructors. Declared
// as a variable so tests can inject failing factories.
var summarizerFactories = map[string]summarizerFactory{
	"static": func(config.SummarizerConfig) (conversation.Summarizer, error) {
		return summarizer.Static{}, nil
	},
	"anthropic": func(sc config.SummarizerConfig) (conversation.Summarizer, error) {
		return anthropicsum.New(anthropicsum.Config{APIKey: sc.APIKey, BaseURL: sc.BaseURL, Model: sc.Model})
	},
	"openai": func(sc config.SummarizerConfig) (conversation.Summarizer, error) {
		return openaisum.New(openaisum.Config{APIKey: sc.APIKey, BaseURL: sc.BaseURL, Model: sc.Model})
	},
	"google": func(sc config.SummarizerConfig) (conversation.Summarizer, error) {
		return googlesum.New(googlesum.Config{APIKey: sc.APIKey, Model: sc.Model})
	},
}

// WireEngine creates all subsystems and wires them together.
func WireEngine(cfg *config.Config) (*Engine, error) {
	factory, ok := summarizerFactories[cfg.Summarizer.Provider]
	if !ok {
		return nil, mnemoerr.Errorf(mnemoerr.CodeSummarizerConfigInvalid,
			"unknown summarizer provider %q", cfg.Summarizer.Provider)
	}
	sum, err := factory(cfg.Summarizer)
	if err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCLISetupFailure,
			"creating %s summarizer", cfg.Summarizer.Provider)
	}

	policy := conversation.NewPolicy(conversation.PolicyConfig{
		Threshold:        cfg.Memory.Threshold,
		KeepRecent:       cfg.Memory.KeepRecent,
		SummarizeTimeout: cfg.Memory.SummarizeTimeout,
		Summarizer:       sum,
	})

	sessions := conversation.NewStore(conversation.StoreConfig{
		Policy:      policy,
		BusyTimeout: cfg.Session.BusyTimeout,
	})

	backend, err := checkpoint.NewBackend(cfg.Storage.Backend, checkpoint.BackendConfig{
		Path: cfg.Storage.SQLite.Path,
	})
	if err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCLISetupFailure,
			"creating %s checkpoint backend", cfg.Storage.Backend)
	}

	mgr := checkpoint.NewManager(checkpoint.ManagerConfig{
		Sessions:  sessions,
		Backend:   backend,
		AutoEvery: cfg.Checkpoint.AutoEvery,
	})

	srv, err := server.New(server.Config{ListenAddr: cfg.Server.Listen})
	if err != nil {
		_ = mgr.Close()
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeCLISetupFailure, "creating server")
	}
	srv.RegisterServices(&server.Services{
		Sessions:    sessions,
		Checkpoints: mgr,
	})

	slog.Info("engine wired",
		"listen", cfg.Server.Listen,
		"backend", cfg.Storage.Backend,
		"summarizer", cfg.Summarizer.Provider,
		"threshold", cfg.Memory.Threshold,
		"keep_recent", cfg.Memory.KeepRecent,
	)

	return &Engine{
		Server:      srv,
		Sessions:    sessions,
		Checkpoints: mgr,
	}, nil
}

// Close releases all resources held by the engine.
func (e *Engine) Close() error {
	var errs []error
	if e.Checkpoints != nil {
		if err := e.Checkpoints.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
