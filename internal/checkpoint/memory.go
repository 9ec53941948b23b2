// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package checkpoint

import (
	"context"
	"slices"
	"sync"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

func init() {
	RegisterBackend("memory", func(BackendConfig) (Backend, error) {
		return NewMemoryBackend(), nil
	})
}

// MemoryBackend keeps checkpoints in process memory. Suitable for tests
// and single-process deployments that do not need durability across
// restarts.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]map[int64][]byte
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]map[int64][]byte)}
}

func (b *MemoryBackend) Put(_ context.Context, sessionID string, version int64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	versions, ok := b.sessions[sessionID]
	if !ok {
		versions = make(map[int64][]byte)
		b.sessions[sessionID] = versions
	}
	if existing, exists := versions[version]; exists {
		// Checkpoints are immutable. Re-saving identical state is a
		// no-op; divergent state at an occupied version (restore to an
		// older checkpoint, then new appends) must fail loudly rather
		// than silently keep the stale payload.
		if SameState(existing, data) {
			return nil
		}
		return mnemoerr.Errorf(mnemoerr.CodeCheckpointPersistence,
			"checkpoint %s@%d already exists with different state", sessionID, version)
	}

	versions[version] = slices.Clone(data)
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, sessionID string, version int64) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	versions := b.sessions[sessionID]
	if len(versions) == 0 {
		return nil, mnemoerr.Errorf(mnemoerr.CodeCheckpointNotFound,
			"no checkpoints for session %q", sessionID)
	}

	if version <= 0 {
		latest := false
		for v := range versions {
			if !latest || v > version {
				version = v
				latest = true
			}
		}
	}

	data, ok := versions[version]
	if !ok {
		return nil, mnemoerr.Errorf(mnemoerr.CodeCheckpointNotFound,
			"session %q has no checkpoint at version %d", sessionID, version)
	}

	return slices.Clone(data), nil
}

func (b *MemoryBackend) ListVersions(_ context.Context, sessionID string) ([]int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	versions := make([]int64, 0, len(b.sessions[sessionID]))
	for v := range b.sessions[sessionID] {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions, nil
}

func (b *MemoryBackend) Prune(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
