// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package checkpoint

import (
	"context"
	"sync"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Backend is the persistence contract for checkpoint storage. Data is a
// serialized state envelope the backend holds opaque, except to compare
// payloads at an occupied version via SameState.
type Backend interface {
	// Put stores data under (sessionID, version). Checkpoints are
	// immutable, never overwritten: a Put carrying the same state as an
	// existing pair is a no-op, while divergent state at an occupied
	// version is a persistence failure.
	Put(ctx context.Context, sessionID string, version int64, data []byte) error
	// Get returns the data for (sessionID, version). A version <= 0
	// requests the highest stored version. Missing checkpoints yield a
	// not-found error.
	Get(ctx context.Context, sessionID string, version int64) ([]byte, error)
	// ListVersions returns the stored versions for a session in ascending
	// order. A session with no checkpoints yields an empty list, not an
	// error.
	ListVersions(ctx context.Context, sessionID string) ([]int64, error)
	// Prune removes every checkpoint for a session. Idempotent.
	Prune(ctx context.Context, sessionID string) error
	Close() error
}

// BackendConfig carries backend construction parameters. Path is the
// filesystem location for file-backed backends; memory ignores it.
type BackendConfig struct {
	Path string
}

// BackendFactory constructs a Backend from its configuration.
type BackendFactory func(cfg BackendConfig) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]BackendFactory{}
)

// RegisterBackend registers a factory for a named backend. Backend
// packages call this from init(). Goroutine-safe.
func RegisterBackend(name string, factory BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// NewBackend constructs the named backend, defaulting to "memory" when
// name is empty.
func NewBackend(name string, cfg BackendConfig) (Backend, error) {
	if name == "" {
		name = "memory"
	}

	factoriesMu.RLock()
	factory, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, mnemoerr.Errorf(mnemoerr.CodeCheckpointBackendUnsupported,
			"unsupported checkpoint backend %q", name)
	}

	return factory(cfg)
}
