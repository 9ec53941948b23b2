// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package server

import (
	"log/slog"

	"github.com/mnemo-dev/mnemo/internal/checkpoint"
	"github.com/mnemo-dev/mnemo/internal/conversation"
)

// Services bundles the dependencies the REST routes operate on.
type Services struct {
	Sessions    *conversation.Store
	Checkpoints *checkpoint.Manager
	Logger      *slog.Logger
}

// MessageView is the wire form of a conversation message.
type MessageView struct {
	Role    string `json:"role" enum:"user,assistant,system" doc:"Message author role"`
	Content string `json:"content" doc:"Message text"`
	Seq     int64  `json:"seq" doc:"Monotonic position in the session log"`
}

// StateView is the wire form of a session's live state.
type StateView struct {
	SessionID string        `json:"session_id" doc:"Session identifier"`
	Messages  []MessageView `json:"messages" doc:"Retained message window, oldest first"`
	Summary   string        `json:"summary,omitempty" doc:"Running summary of trimmed messages"`
	Version   int64         `json:"version" doc:"Commit version, incremented per append"`
}

func stateView(state *conversation.State) StateView {
	msgs := make([]MessageView, len(state.Messages))
	for i, m := range state.Messages {
		msgs[i] = MessageView{Role: string(m.Role), Content: m.Content, Seq: m.Seq}
	}
	return StateView{
		SessionID: state.SessionID,
		Messages:  msgs,
		Summary:   state.Summary,
		Version:   state.Version,
	}
}
