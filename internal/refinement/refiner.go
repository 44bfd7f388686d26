// Package refinement revises an existing design according to feedback.
package refinement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/engine"
	"github.com/kalambet/vitae/internal/prompt"
	"github.com/kalambet/vitae/internal/sanitize"
)

const FailureMessage = "AI failed to refine the template."

// Refiner produces a full replacement design from the caller's current markup
// and style plus feedback. The caller's copy is the only input; the Refiner
// keeps nothing between calls.
type Refiner struct {
	cap    engine.Capability
	logger *slog.Logger
}

func New(c engine.Capability, logger *slog.Logger) *Refiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{cap: c, logger: logger}
}

// Refine makes exactly one capability call with no tools.
func (r *Refiner) Refine(ctx context.Context, req contract.RefinementRequest) (contract.Result[contract.Artifact], error) {
	start := time.Now()

	instruction, err := prompt.Refinement.Render(req)
	if err != nil {
		return contract.Result[contract.Artifact]{}, err
	}

	raw, err := r.cap.Invoke(ctx, instruction, prompt.Refinement.Output.Schema())
	if err != nil {
		return contract.Result[contract.Artifact]{}, fmt.Errorf("refining design: %w", err)
	}
	if raw == nil {
		r.logger.Warn("model returned no output")
		return contract.Fail[contract.Artifact](contract.KindRefinement, FailureMessage), nil
	}

	out, err := contract.Decode[contract.RefinementOutput](prompt.Refinement.Output, raw)
	if err != nil {
		r.logger.Warn("model output failed validation", "error", err, "bytes", len(raw))
		return contract.Fail[contract.Artifact](contract.KindRefinement, FailureMessage), nil
	}

	art, ok := sanitize.Artifact(out.HTML, out.CSS)
	if !ok {
		r.logger.Warn("model output empty after sanitization")
		return contract.Fail[contract.Artifact](contract.KindRefinement, FailureMessage), nil
	}

	r.logger.Info("design refined",
		"duration", time.Since(start),
		"feedback_chars", len([]rune(req.Feedback)),
		"markup_bytes", len(art.Markup),
	)
	return contract.Ok(art), nil
}
