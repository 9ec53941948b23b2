// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package summarizer

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mnemo-dev/mnemo/internal/conversation"
)

// maxStaticExcerpt bounds how much of each folded message the static
// provider keeps, so summaries stay short without a model.
const maxStaticExcerpt = 80

// Static is a deterministic Summarizer that needs no API access. It keeps
// a bounded excerpt of each folded message, appended to the prior summary.
// Useful for tests and deployments without a model provider.
type Static struct{}

var _ conversation.Summarizer = Static{}

func (Static) Summarize(_ context.Context, prior string, msgs []conversation.Message) (string, error) {
	parts := make([]string, 0, len(msgs)+1)
	if prior != "" {
		parts = append(parts, prior)
	}

	for _, m := range msgs {
		parts = append(parts, string(m.Role)+": "+excerpt(strings.TrimSpace(m.Content)))
	}

	return strings.Join(parts, "\n"), nil
}

// excerpt bounds content to maxStaticExcerpt bytes, cutting on a rune
// boundary so multibyte text stays valid UTF-8.
func excerpt(content string) string {
	if len(content) <= maxStaticExcerpt {
		return content
	}

	cut := maxStaticExcerpt
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
