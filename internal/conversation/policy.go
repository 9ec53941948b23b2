// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package conversation

import (
	"context"
	"log/slog"
	"time"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Summarizer condenses messages leaving the live window into a short text.
// prior is the existing summary ("" if none); implementations prepend it as
// context so the result covers everything the prior summary covered plus
// msgs. The engine treats the output as opaque text.
type Summarizer interface {
	Summarize(ctx context.Context, prior string, msgs []Message) (string, error)
}

// Default policy tuning: trim once the log exceeds DefaultThreshold
// messages, keeping the DefaultKeepRecent newest.
const (
	DefaultThreshold        = 10
	DefaultKeepRecent       = 6
	DefaultSummarizeTimeout = 30 * time.Second
)

// PolicyConfig holds the dependencies and tuning parameters for a Policy.
type PolicyConfig struct {
	// Threshold is the message count above which a pass trims. Must be
	// >= KeepRecent.
	Threshold int
	// KeepRecent is the number of newest messages retained by a trim.
	KeepRecent int
	// SummarizeTimeout bounds a single Summarizer call.
	SummarizeTimeout time.Duration
	Summarizer       Summarizer
	Logger           *slog.Logger
}

// Policy decides, per pass, whether a state needs trimming and folds the
// trimmed messages into the running summary. Summarisation is best-effort;
// trimming is not.
type Policy struct {
	threshold  int
	keepRecent int
	timeout    time.Duration
	summarizer Summarizer
	logger     *slog.Logger
}

// NewPolicy creates a Policy, applying defaults for unset tuning values.
func NewPolicy(cfg PolicyConfig) *Policy {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.KeepRecent <= 0 {
		cfg.KeepRecent = DefaultKeepRecent
	}
	if cfg.KeepRecent > cfg.Threshold {
		cfg.KeepRecent = cfg.Threshold
	}
	if cfg.SummarizeTimeout <= 0 {
		cfg.SummarizeTimeout = DefaultSummarizeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Policy{
		threshold:  cfg.Threshold,
		keepRecent: cfg.KeepRecent,
		timeout:    cfg.SummarizeTimeout,
		summarizer: cfg.Summarizer,
		logger:     cfg.Logger,
	}
}

// Apply runs one policy pass over state and returns the resulting state.
// The input is never mutated. When the log is within the threshold the
// input is returned unchanged; otherwise the result keeps the newest
// messages with their original sequence numbers and a summary covering the
// rest. At most one Summarizer call is made per pass.
func (p *Policy) Apply(ctx context.Context, state *State) *State {
	if len(state.Messages) <= p.threshold {
		return state
	}

	cut := len(state.Messages) - p.keepRecent
	toFold := state.Messages[:cut]
	toKeep := state.Messages[cut:]

	result := state.Clone()
	result.Messages = make([]Message, len(toKeep))
	copy(result.Messages, toKeep)

	maxFold := toFold[len(toFold)-1].Seq
	if state.Summary != "" && maxFold <= state.SummarySeq {
		// Everything leaving the window is already covered; nothing to do.
		return result
	}

	summary, err := p.summarize(ctx, state.Summary, toFold)
	if err != nil {
		// Best-effort: keep the previous summary (never empty an existing
		// one) and trim regardless. The fold range is consumed either way;
		// a failed summarisation is not retried against messages that have
		// already left the window.
		p.logger.Warn("summarizer failed, retaining previous summary",
			"session_id", state.SessionID, "folded", len(toFold), "error", err)
		result.SummarySeq = maxFold
		return result
	}

	result.Summary = summary
	result.SummarySeq = maxFold
	return result
}

func (p *Policy) summarize(ctx context.Context, prior string, msgs []Message) (string, error) {
	if p.summarizer == nil {
		return "", mnemoerr.New(mnemoerr.CodeSummarizerConfigInvalid, "no summarizer configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.summarizer.Summarize(ctx, prior, msgs)
}
