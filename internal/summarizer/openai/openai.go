// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package openai folds conversation history into summaries using the
// OpenAI Chat Completions API.
package openai

import (
	"context"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	"github.com/mnemo-dev/mnemo/internal/summarizer"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4.1-mini"

// Config holds OpenAI summarizer configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
	Model   string
}

// Summarizer implements conversation.Summarizer on the OpenAI Chat
// Completions API.
type Summarizer struct {
	client openaisdk.Client
	model  string
}

var _ conversation.Summarizer = (*Summarizer)(nil)

// New creates an OpenAI summarizer. Returns an error if the API key is
// missing.
func New(cfg Config) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, mnemoerr.New(mnemoerr.CodeSummarizerConfigInvalid,
			"openai: missing api_key in config", mnemoerr.FieldProvider("openai"))
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
		client: openaisdk.NewClient(opts...),
		model:  model,
	}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, prior string, msgs []conversation.Message) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(summarizer.SystemPrompt),
			openaisdk.UserMessage(summarizer.FoldPrompt(prior, msgs)),
		},
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", mnemoerr.Wrap(err, mnemoerr.CodeSummarizerUpstreamFailure,
			"openai: summarize request", mnemoerr.FieldProvider("openai"))
	}

	if len(completion.Choices) == 0 {
		return "", mnemoerr.New(mnemoerr.CodeSummarizerUpstreamFailure,
			"openai: response contained no choices", mnemoerr.FieldProvider("openai"))
	}

	out := strings.TrimSpace(completion.Choices[0].Message.Content)
	if out == "" {
		return "", mnemoerr.New(mnemoerr.CodeSummarizerUpstreamFailure,
			"openai: response contained no text", mnemoerr.FieldProvider("openai"))
	}
	return out, nil
}
