// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package conversation holds the per-session message log, the bounded-memory
// policy that trims and summarises it, and the session store that serialises
// commits to it.
package conversation

import (
	"strings"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single immutable entry in a session's log. Seq is assigned
// by the session store and strictly increases within a session; it is never
// reused, even after the message leaves the live window.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Seq     int64  `json:"seq"`
}

// State is the live conversation state of one session. It is owned by the
// session store entry for that session and mutated only through the
// append/policy/commit pipeline; everything handed to callers is a copy.
type State struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	// Summary condenses messages trimmed out of the live window.
	// Empty until the first policy pass that folds messages.
	Summary string `json:"summary"`
	// SummarySeq is the highest sequence number whose content is folded
	// into Summary (0 = nothing folded yet). Carried in the state so a
	// checkpoint restore rewinds summary bookkeeping atomically.
	SummarySeq int64 `json:"summary_seq"`
	// Version increments on every committed mutation.
	Version int64 `json:"version"`
}

// NewState returns the empty state for a fresh session: version 0, no
// messages, no summary.
func NewState(sessionID string) *State {
	return &State{SessionID: sessionID}
}

// Clone returns a deep copy safe to hand outside the store.
func (s *State) Clone() *State {
	cp := *s
	if s.Messages != nil {
		cp.Messages = make([]Message, len(s.Messages))
		copy(cp.Messages, s.Messages)
	}
	return &cp
}

// LastSeq returns the sequence number of the newest live message, or
// SummarySeq when the window is empty (sequence numbering continues past
// trimmed messages).
func (s *State) LastSeq() int64 {
	if n := len(s.Messages); n > 0 {
		return s.Messages[n-1].Seq
	}
	return s.SummarySeq
}

// ValidateSessionID rejects empty or blank session identifiers.
func ValidateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return mnemoerr.New(mnemoerr.CodeSessionIDInvalid, "session id must not be empty")
	}
	return nil
}

// ValidateMessage rejects unknown roles and empty content.
func ValidateMessage(role Role, content string) error {
	if !role.Valid() {
		return mnemoerr.Errorf(mnemoerr.CodeSessionMessageInvalid, "unrecognised role %q", role)
	}
	if content == "" {
		return mnemoerr.New(mnemoerr.CodeSessionMessageInvalid, "message content must not be empty")
	}
	return nil
}
