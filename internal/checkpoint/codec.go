// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package checkpoint

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// schemaVersion identifies the envelope layout. Bump on incompatible
// changes to the serialized state shape; loads reject unknown versions
// rather than guessing.
const schemaVersion = 1

// envelope is the serialized form of a checkpoint as handed to backends.
type envelope struct {
	SchemaVersion int                 `json:"schema_version"`
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	State         *conversation.State `json:"state"`
}

// encodeState wraps a state in a schema-versioned envelope with a fresh
// checkpoint id and returns its JSON encoding alongside the envelope
// metadata.
func encodeState(state *conversation.State) ([]byte, string, time.Time, error) {
	env := envelope{
		SchemaVersion: schemaVersion,
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		State:         state,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, "", time.Time{}, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPersistence,
			"encoding checkpoint for session %s", state.SessionID)
	}
	return data, env.ID, env.CreatedAt, nil
}

// decodeState parses and validates a checkpoint envelope loaded from a
// backend.
func decodeState(data []byte) (*Checkpoint, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeSessionStateCorrupt, "decoding checkpoint envelope")
	}

	if env.SchemaVersion != schemaVersion {
		return nil, mnemoerr.Errorf(mnemoerr.CodeSessionStateCorrupt,
			"unsupported checkpoint schema version %d (want %d)", env.SchemaVersion, schemaVersion)
	}
	if env.State == nil || env.State.SessionID == "" {
		return nil, mnemoerr.New(mnemoerr.CodeSessionStateCorrupt, "checkpoint envelope has no session state")
	}

	return &Checkpoint{
		ID:        env.ID,
		SessionID: env.State.SessionID,
		Version:   env.State.Version,
		State:     env.State,
		CreatedAt: env.CreatedAt,
	}, nil
}

// SameState reports whether two encoded checkpoint payloads carry the same
// session state. Envelope metadata (checkpoint id, creation time) is
// ignored: every save wraps the state in a fresh envelope, so re-saving
// unchanged state produces different bytes for the same state. Payloads
// that cannot be decoded compare equal only when byte-identical.
func SameState(a, b []byte) bool {
	if bytes.Equal(a, b) {
		return true
	}

	ca, errA := decodeState(a)
	cb, errB := decodeState(b)
	if errA != nil || errB != nil {
		return false
	}

	ja, errA := json.Marshal(ca.State)
	jb, errB := json.Marshal(cb.State)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
