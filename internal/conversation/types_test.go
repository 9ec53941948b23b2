// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package conversation_test

import (
	"testing"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, conversation.RoleUser.Valid())
	assert.True(t, conversation.RoleAssistant.Valid())
	assert.True(t, conversation.RoleSystem.Valid())
	assert.False(t, conversation.Role("tool").Valid())
	assert.False(t, conversation.Role("").Valid())
}

func TestValidateMessage(t *testing.T) {
	require.NoError(t, conversation.ValidateMessage(conversation.RoleUser, "hello"))

	err := conversation.ValidateMessage(conversation.Role("robot"), "hello")
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeSessionMessageInvalid, mnemoerr.CodeOf(err))

	err = conversation.ValidateMessage(conversation.RoleUser, "")
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeSessionMessageInvalid, mnemoerr.CodeOf(err))
}

func TestValidateSessionID(t *testing.T) {
	require.NoError(t, conversation.ValidateSessionID("alice"))

	for _, id := range []string{"", "   ", "\t"} {
		err := conversation.ValidateSessionID(id)
		require.Error(t, err, "id %q", id)
		assert.Equal(t, mnemoerr.CodeSessionIDInvalid, mnemoerr.CodeOf(err))
	}
}

func TestStateClone(t *testing.T) {
	state := &conversation.State{
		SessionID: "s1",
		Messages: []conversation.Message{
			{Role: conversation.RoleUser, Content: "a", Seq: 1},
			{Role: conversation.RoleAssistant, Content: "b", Seq: 2},
		},
		Summary:    "sum",
		SummarySeq: 0,
		Version:    4,
	}

	cp := state.Clone()
	cp.Messages[0].Content = "mutated"
	cp.Summary = "changed"

	assert.Equal(t, "a", state.Messages[0].Content)
	assert.Equal(t, "sum", state.Summary)
}

func TestStateLastSeq(t *testing.T) {
	empty := conversation.NewState("s1")
	assert.Equal(t, int64(0), empty.LastSeq())

	// After a trim the window may be empty while SummarySeq carries the
	// high-water mark; numbering must continue from there.
	trimmed := &conversation.State{SessionID: "s1", SummarySeq: 7}
	assert.Equal(t, int64(7), trimmed.LastSeq())

	withMsgs := &conversation.State{
		SessionID:  "s1",
		SummarySeq: 5,
		Messages:   []conversation.Message{{Seq: 6}, {Seq: 7}, {Seq: 8}},
	}
	assert.Equal(t, int64(8), withMsgs.LastSeq())
}
