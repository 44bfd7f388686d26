// Package generation creates a new design from a free-text prompt.
package generation

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

// FailureMessage is returned to callers when the model output is missing,
// malformed or empty.
const FailureMessage = "AI failed to generate a complete template. Please try a different prompt."

// Generator turns a prompt into a sanitized design. It holds no mutable state
// and is safe for concurrent use.
type Generator struct {
	cap    engine.Capability
	tools  []engine.Tool
	logger *slog.Logger
}

// New creates a Generator. The tools are offered to the model on every call.
func New(c engine.Capability, logger *slog.Logger, tools ...engine.Tool) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cap: c, tools: tools, logger: logger}
}

// Generate makes exactly one capability call. Expected failures are reported
// as a failed Result with kind generation_failed; the error return is
// reserved for capability failures.
func (g *Generator) Generate(ctx context.Context, req contract.GenerationRequest) (contract.Result[contract.Artifact], error) {
	start := time.Now()

	instruction, err := prompt.RenderGeneration(req)
	if err != nil {
		return contract.Result[contract.Artifact]{}, err
	}
	g.logger.Debug("generating design", "prompt_tokens", prompt.EstimateTokens(instruction), "tools", len(g.tools))

	raw, err := g.cap.Invoke(ctx, instruction, prompt.Generation.Output.Schema(), g.tools...)
	if err != nil {
		return contract.Result[contract.Artifact]{}, fmt.Errorf("generating design: %w", err)
	}
	if raw == nil {
		g.logger.Warn("model returned no output")
		return contract.Fail[contract.Artifact](contract.KindGeneration, FailureMessage), nil
	}

	out, err := contract.Decode[contract.GenerationOutput](prompt.Generation.Output, raw)
	if err != nil {
		g.logger.Warn("model output failed validation", "error", err, "bytes", len(raw))
		return contract.Fail[contract.Artifact](contract.KindGeneration, FailureMessage), nil
	}

	art, ok := sanitize.Artifact(out.Design, out.CSS)
	if !ok {
		g.logger.Warn("model output empty after sanitization",
			"markup_bytes", len(art.Markup), "style_bytes", len(art.Style))
		return contract.Fail[contract.Artifact](contract.KindGeneration, FailureMessage), nil
	}

	g.logger.Info("design generated",
		"duration", time.Since(start),
		"markup_bytes", len(art.Markup),
		"style_bytes", len(art.Style),
	)
	return contract.Ok(art), nil
}
