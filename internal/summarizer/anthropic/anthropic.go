// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package anthropic folds conversation history into summaries using the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	"github.com/mnemo-dev/mnemo/internal/summarizer"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5"

const maxSummaryTokens = 1024

// Config holds Anthropic summarizer configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
	Model   string
}

// Summarizer implements conversation.Summarizer on the Anthropic Messages API.
type Summarizer struct {
	client anthropicsdk.Client
	model  string
}

var _ conversation.Summarizer = (*Summarizer)(nil)

// New creates an Anthropic summarizer. Returns an error if the API key is
// missing.
func New(cfg Config) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, mnemoerr.New(mnemoerr.CodeSummarizerConfigInvalid,
			"anthropic: missing api_key in config", mnemoerr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Summarizer{
		client: anthropicsdk.NewClient(opts...),
		model:  model,
	}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, prior string, msgs []conversation.Message) (string, error) {
	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(s.model),
		MaxTokens: int64(maxSummaryTokens),
		System: []anthropicsdk.TextBlockParam{
			{Text: summarizer.SystemPrompt},
		},
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(summarizer.FoldPrompt(prior, msgs))),
		},
	}

	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", mnemoerr.Wrap(err, mnemoerr.CodeSummarizerUpstreamFailure,
			"anthropic: summarize request", mnemoerr.FieldProvider("anthropic"))
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropicsdk.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", mnemoerr.New(mnemoerr.CodeSummarizerUpstreamFailure,
			"anthropic: response contained no text", mnemoerr.FieldProvider("anthropic"))
	}
	return out, nil
}
