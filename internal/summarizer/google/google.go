// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package google folds conversation history into summaries using the
// Google Gemini API.
package google

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	"github.com/mnemo-dev/mnemo/internal/summarizer"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds Google summarizer configuration.
type Config struct {
	APIKey string
	Model  string
}

// Summarizer implements conversation.Summarizer on the Google Gemini API.
type Summarizer struct {
	client *genai.Client
	model  string
}

var _ conversation.Summarizer = (*Summarizer)(nil)

// New creates a Google summarizer. Returns an error if the API key is
// missing.
func New(cfg Config) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, mnemoerr.New(mnemoerr.CodeSummarizerConfigInvalid,
			"google: missing api_key in config", mnemoerr.FieldProvider("google"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeSummarizerUpstreamFailure,
			"google: creating client", mnemoerr.FieldProvider("google"))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Summarizer{client: client, model: model}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, prior string, msgs []conversation.Message) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: summarizer.FoldPrompt(prior, msgs)},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: summarizer.SystemPrompt},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", mnemoerr.Wrap(err, mnemoerr.CodeSummarizerUpstreamFailure,
			"google: summarize request", mnemoerr.FieldProvider("google"))
	}

	var b strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", mnemoerr.New(mnemoerr.CodeSummarizerUpstreamFailure,
			"google: response contained no text", mnemoerr.FieldProvider("google"))
	}
	return out, nil
}
