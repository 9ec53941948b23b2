// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package checkpoint persists immutable, versioned snapshots of session
// state and restores sessions from them through a pluggable backend.
package checkpoint

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Checkpoint is one immutable snapshot of a session's state at a version.
type Checkpoint struct {
	ID        string
	SessionID string
	Version   int64
	State     *conversation.State
	CreatedAt time.Time
}

// ManagerConfig holds the dependencies and tuning parameters for a Manager.
type ManagerConfig struct {
	Sessions *conversation.Store
	Backend  Backend
	// AutoEvery saves a checkpoint automatically every N commits
	// (best-effort). 0 disables auto-saves.
	AutoEvery int
	Logger    *slog.Logger
}

// Manager coordinates checkpoint saves and restores against the session
// store. Save and restore for a session serialise with appends through the
// store's per-session latch.
type Manager struct {
	sessions  *conversation.Store
	backend   Backend
	autoEvery int
	logger    *slog.Logger
}

// NewManager creates a Manager. When AutoEvery > 0 it registers a commit
// hook on the session store so every Nth commit is persisted without a
// caller-issued save.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	m := &Manager{
		sessions:  cfg.Sessions,
		backend:   cfg.Backend,
		autoEvery: cfg.AutoEvery,
		logger:    cfg.Logger,
	}

	if m.autoEvery > 0 && m.sessions != nil {
		m.sessions.SetCommitHook(m.autoSave)
	}

	return m
}

// Save snapshots the session's current state and writes it as a durable
// checkpoint keyed by that state's version. The live state is unaffected
// by a failed save. Returns the saved version.
func (m *Manager) Save(ctx context.Context, sessionID string) (int64, error) {
	state, err := m.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if err := m.put(ctx, state); err != nil {
		return 0, err
	}

	m.logger.Debug("saved checkpoint", "session_id", sessionID, "version", state.Version)
	return state.Version, nil
}

// Get loads a checkpoint without installing it. A version <= 0 requests
// the latest.
func (m *Manager) Get(ctx context.Context, sessionID string, version int64) (*Checkpoint, error) {
	if err := conversation.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	data, err := m.backend.Get(ctx, sessionID, version)
	if err != nil {
		return nil, err
	}

	cp, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	if cp.SessionID != sessionID {
		return nil, mnemoerr.Errorf(mnemoerr.CodeSessionStateCorrupt,
			"checkpoint for session %q found under key %q", cp.SessionID, sessionID)
	}

	return cp, nil
}

// Restore loads the checkpoint matching version (<= 0 means latest) and
// installs it as the session's live state, overwriting whatever was there.
// Restoring the same version repeatedly yields identical state.
func (m *Manager) Restore(ctx context.Context, sessionID string, version int64) (*conversation.State, error) {
	cp, err := m.Get(ctx, sessionID, version)
	if err != nil {
		return nil, err
	}

	if err := m.sessions.Install(ctx, sessionID, cp.State); err != nil {
		return nil, err
	}

	m.logger.Debug("restored checkpoint", "session_id", sessionID, "version", cp.Version)
	return cp.State.Clone(), nil
}

// Versions yields the available checkpoint versions for a session in
// ascending creation order. The sequence is lazy and restartable: each
// range re-reads the backend. Iteration stops early on a yield returning
// false; a backend failure is yielded once as the final element's error.
func (m *Manager) Versions(ctx context.Context, sessionID string) iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		versions, err := m.backend.ListVersions(ctx, sessionID)
		if err != nil {
			yield(0, err)
			return
		}
		for _, v := range versions {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Prune removes every checkpoint for a session. The live state, if any,
// is untouched.
func (m *Manager) Prune(ctx context.Context, sessionID string) error {
	return m.backend.Prune(ctx, sessionID)
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}

func (m *Manager) put(ctx context.Context, state *conversation.State) error {
	data, _, _, err := encodeState(state)
	if err != nil {
		return err
	}

	return m.backend.Put(ctx, state.SessionID, state.Version, data)
}

// autoSave is the commit hook: it persists every AutoEvery-th committed
// version. Auto-saves are best-effort; failures are logged, never
// surfaced to the appending caller.
func (m *Manager) autoSave(ctx context.Context, state *conversation.State) {
	if state.Version%int64(m.autoEvery) != 0 {
		return
	}

	if err := m.put(ctx, state); err != nil {
		m.logger.Warn("auto checkpoint failed",
			"session_id", state.SessionID, "version", state.Version, "error", err)
		return
	}

	m.logger.Debug("auto checkpoint saved", "session_id", state.SessionID, "version", state.Version)
}
