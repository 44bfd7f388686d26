// Package feedback condenses user feedback on a design and applies it.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/engine"
	"github.com/kalambet/vitae/internal/prompt"
	"github.com/kalambet/vitae/internal/sanitize"
)

const FailureMessage = "AI failed to summarize the feedback."

// Summarizer asks the model for a summary of feedback and a revised template.
type Summarizer struct {
	cap    engine.Capability
	logger *slog.Logger
}

func New(c engine.Capability, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{cap: c, logger: logger}
}

func (s *Summarizer) Summarize(ctx context.Context, req contract.FeedbackRequest) (contract.Result[contract.FeedbackSummary], error) {
	instruction, err := prompt.FeedbackSummary.Render(req)
	if err != nil {
		return contract.Result[contract.FeedbackSummary]{}, err
	}

	raw, err := s.cap.Invoke(ctx, instruction, prompt.FeedbackSummary.Output.Schema())
	if err != nil {
		return contract.Result[contract.FeedbackSummary]{}, fmt.Errorf("summarizing feedback: %w", err)
	}
	if raw == nil {
		s.logger.Warn("model returned no output")
		return contract.Fail[contract.FeedbackSummary](contract.KindSummary, FailureMessage), nil
	}

	out, err := contract.Decode[contract.FeedbackSummary](prompt.FeedbackSummary.Output, raw)
	if err != nil {
		s.logger.Warn("model output failed validation", "error", err)
		return contract.Fail[contract.FeedbackSummary](contract.KindSummary, FailureMessage), nil
	}

	out.Summary = strings.TrimSpace(out.Summary)
	out.RefinedTemplate = sanitize.StripFences(out.RefinedTemplate)
	if out.Summary == "" || out.RefinedTemplate == "" {
		s.logger.Warn("model output empty after sanitization")
		return contract.Fail[contract.FeedbackSummary](contract.KindSummary, FailureMessage), nil
	}
	return contract.Ok(out), nil
}
