// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// DefaultBusyTimeout bounds the wait for a session's latch. It guards
// against a stuck summarizer call starving every other operation on the
// same session forever.
const DefaultBusyTimeout = 5 * time.Second

// CommitHook observes committed states. It runs while the committing
// session's latch is still held, so it must not call back into the store
// for the same session.
type CommitHook func(ctx context.Context, state *State)

// StoreConfig holds the dependencies and tuning parameters for a Store.
type StoreConfig struct {
	Policy      *Policy
	BusyTimeout time.Duration
	Logger      *slog.Logger
}

// Store owns the mapping from session identifier to live conversation
// state. Operations on one session are serialised through a per-session
// latch; distinct sessions never contend with each other.
type Store struct {
	policy      *Policy
	busyTimeout time.Duration
	logger      *slog.Logger

	mu       sync.Mutex // guards sessions map, not session state
	sessions map[string]*session

	hookMu sync.RWMutex
	hook   CommitHook
}

// session pairs a latch with the state it protects. The latch is a
// 1-buffered channel: a successful send acquires, a receive releases.
type session struct {
	latch chan struct{}
	state *State
}

// NewStore creates a Store with the given policy and tuning.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Policy == nil {
		cfg.Policy = NewPolicy(PolicyConfig{})
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Store{
		policy:      cfg.Policy,
		busyTimeout: cfg.BusyTimeout,
		logger:      cfg.Logger,
		sessions:    make(map[string]*session),
	}
}

// SetCommitHook registers a hook invoked after every commit (append or
// install). Used by the checkpoint manager for auto-saves.
func (s *Store) SetCommitHook(hook CommitHook) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hook = hook
}

// GetOrCreate returns a copy of the session's current state, creating an
// empty one (version 0) if the session does not exist. Fails only on an
// invalid identifier or an expired context.
func (s *Store) GetOrCreate(ctx context.Context, sessionID string) (*State, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	sess := s.entry(sessionID)
	if err := s.acquire(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	defer release(sess)

	return sess.state.Clone(), nil
}

// Append validates and appends a message to the session's log, runs the
// memory policy over the result, and commits it as a new version. The
// returned state is a copy of the committed state. No partial state is
// ever committed: on any failure the session is left exactly as it was.
func (s *Store) Append(ctx context.Context, sessionID string, role Role, content string) (*State, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if err := ValidateMessage(role, content); err != nil {
		return nil, err
	}

	sess := s.entry(sessionID)
	if err := s.acquire(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	defer release(sess)

	candidate := sess.state.Clone()
	candidate.Messages = append(candidate.Messages, Message{
		Role:    role,
		Content: content,
		Seq:     candidate.LastSeq() + 1,
	})

	result := s.policy.Apply(ctx, candidate)
	result.Version = sess.state.Version + 1
	sess.state = result

	s.logger.Debug("committed session state",
		"session_id", sessionID, "version", result.Version, "messages", len(result.Messages))

	committed := result.Clone()
	s.runHook(ctx, committed)

	return committed, nil
}

// Snapshot returns a read-only copy of the session's current state. It
// serialises after any in-flight commit and before any new one.
func (s *Store) Snapshot(ctx context.Context, sessionID string) (*State, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, mnemoerr.Errorf(mnemoerr.CodeSessionNotFound, "session %q has no live state", sessionID)
	}

	if err := s.acquire(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	defer release(sess)

	return sess.state.Clone(), nil
}

// Install replaces the session's live state wholesale, creating the session
// entry if absent. The install commits under the same per-session latch as
// appends, so a restore cannot race a concurrent commit. The installed
// state is stored as-is (checkpointed versions are not renumbered).
func (s *Store) Install(ctx context.Context, sessionID string, state *State) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}

	sess := s.entry(sessionID)
	if err := s.acquire(ctx, sessionID, sess); err != nil {
		return err
	}
	defer release(sess)

	sess.state = state.Clone()
	sess.state.SessionID = sessionID

	s.logger.Debug("installed session state",
		"session_id", sessionID, "version", sess.state.Version)
	return nil
}

// Remove evicts a session's live state. Idempotent; checkpoints are
// unaffected. An in-flight commit on the evicted entry completes against
// the orphaned state and is discarded with it.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count returns the number of sessions with live state.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// entry returns the session entry for id, creating it if absent.
func (s *Store) entry(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{
			latch: make(chan struct{}, 1),
			state: NewState(id),
		}
		s.sessions[id] = sess
	}
	return sess
}

// acquire takes the session latch, waiting at most the busy timeout.
func (s *Store) acquire(ctx context.Context, id string, sess *session) error {
	timer := time.NewTimer(s.busyTimeout)
	defer timer.Stop()

	select {
	case sess.latch <- struct{}{}:
		return nil
	case <-timer.C:
		return mnemoerr.Errorf(mnemoerr.CodeSessionBusyTimeout,
			"session %q busy: latch not acquired within %s", id, s.busyTimeout)
	case <-ctx.Done():
		return mnemoerr.Wrapf(ctx.Err(), mnemoerr.CodeSessionBusyTimeout,
			"session %q busy: context done while waiting for latch", id)
	}
}

func release(sess *session) {
	<-sess.latch
}

func (s *Store) runHook(ctx context.Context, state *State) {
	s.hookMu.RLock()
	hook := s.hook
	s.hookMu.RUnlock()

	if hook != nil {
		hook(ctx, state)
	}
}
