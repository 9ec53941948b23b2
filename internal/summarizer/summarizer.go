// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package summarizer provides implementations of conversation.Summarizer:
// model-backed providers under subpackages (anthropic, openai, google) and
// a deterministic static provider for tests and offline use.
//
// Providers fold trimmed messages into a running summary. The shared prompt
// helpers keep the fold instructions identical across providers so swapping
// the configured provider does not change summary semantics.
package summarizer

import (
	"strings"

	"github.com/mnemo-dev/mnemo/internal/conversation"
)

// SystemPrompt instructs the model to act as a conversation condenser.
const SystemPrompt = "You condense conversation history. Reply with only the summary text, no preamble."

// FoldPrompt builds the user prompt that folds msgs into prior. When prior
// is non-empty it is prepended so the model extends the running summary
// instead of starting over.
func FoldPrompt(prior string, msgs []conversation.Message) string {
	var b strings.Builder

	b.WriteString("Please concisely summarize the key points of the following conversation, preserving important information.\n\n")
	if prior != "" {
		b.WriteString("Summary so far:\n")
		b.WriteString(prior)
		b.WriteString("\n\nNew messages:\n")
	} else {
		b.WriteString("Conversation:\n")
	}
	b.WriteString(Transcript(msgs))
	b.WriteString("\nSummary:")

	return b.String()
}

// Transcript renders messages as "role: content" lines in order.
func Transcript(msgs []conversation.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}
