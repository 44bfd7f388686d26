// Package action is the caller-facing entry point. It validates raw input
// before any model call and turns every outcome into a contract.Result.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/kalambet/vitae/internal/contract"
)

const (
	generateUnexpected  = "An unexpected error occurred while generating the resume. Please try again later."
	refineUnexpected    = "An unexpected error occurred while refining the resume. Please try again later."
	summarizeUnexpected = "An unexpected error occurred while summarizing the feedback. Please try again later."
)

// Generator creates a design from a prompt.
type Generator interface {
	Generate(ctx context.Context, req contract.GenerationRequest) (contract.Result[contract.Artifact], error)
}

// Refiner revises a design according to feedback.
type Refiner interface {
	Refine(ctx context.Context, req contract.RefinementRequest) (contract.Result[contract.Artifact], error)
}

// Summarizer condenses feedback on a design.
type Summarizer interface {
	Summarize(ctx context.Context, req contract.FeedbackRequest) (contract.Result[contract.FeedbackSummary], error)
}

// Actions exposes the three caller operations. Each call is independent.
type Actions struct {
	gen    Generator
	ref    Refiner
	sum    Summarizer
	logger *slog.Logger
}

// New creates Actions. sum may be nil, in which case SubmitFeedbackSummary
// reports an operational failure.
func New(gen Generator, ref Refiner, sum Summarizer, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{gen: gen, ref: ref, sum: sum, logger: logger}
}

// SubmitGeneration validates raw against the generation input contract and,
// when valid, generates a design. raw may be a prompt string, a
// GenerationRequest, a map or JSON bytes.
func (a *Actions) SubmitGeneration(ctx context.Context, raw any) contract.Result[contract.Artifact] {
	req, err := contract.Decode[contract.GenerationRequest](contract.GenerationInput, raw)
	if err != nil {
		a.logger.Debug("generation input rejected", "error", err)
		return contract.Fail[contract.Artifact](contract.KindInputValidation, err.Error())
	}
	return guard(ctx, a.logger, "generate", generateUnexpected, func(ctx context.Context) (contract.Result[contract.Artifact], error) {
		return a.gen.Generate(ctx, req)
	})
}

// SubmitRefinement validates raw against the refinement input contract and,
// when valid, refines the supplied design.
func (a *Actions) SubmitRefinement(ctx context.Context, raw any) contract.Result[contract.Artifact] {
	req, err := contract.Decode[contract.RefinementRequest](contract.RefinementInput, raw)
	if err != nil {
		a.logger.Debug("refinement input rejected", "error", err)
		return contract.Fail[contract.Artifact](contract.KindInputValidation, err.Error())
	}
	return guard(ctx, a.logger, "refine", refineUnexpected, func(ctx context.Context) (contract.Result[contract.Artifact], error) {
		return a.ref.Refine(ctx, req)
	})
}

// SubmitFeedbackSummary validates raw against the feedback input contract and,
// when valid, summarizes the feedback.
func (a *Actions) SubmitFeedbackSummary(ctx context.Context, raw any) contract.Result[contract.FeedbackSummary] {
	req, err := contract.Decode[contract.FeedbackRequest](contract.FeedbackInput, raw)
	if err != nil {
		return contract.Fail[contract.FeedbackSummary](contract.KindInputValidation, err.Error())
	}
	return guard(ctx, a.logger, "summarize", summarizeUnexpected, func(ctx context.Context) (contract.Result[contract.FeedbackSummary], error) {
		if a.sum == nil {
			return contract.Result[contract.FeedbackSummary]{}, fmt.Errorf("feedback summarizer not configured")
		}
		return a.sum.Summarize(ctx, req)
	})
}

// guard runs fn and converts errors and panics into an operational failure.
// The cause is logged; callers only see msg.
func guard[T any](ctx context.Context, logger *slog.Logger, op, msg string, fn func(context.Context) (contract.Result[T], error)) (res contract.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("operation panicked", "op", op, "panic", p, "stack", string(debug.Stack()))
			res = contract.Fail[T](contract.KindOperational, msg)
		}
	}()

	res, err := fn(ctx)
	if err != nil {
		logger.Error("operation failed", "op", op, "error", err)
		return contract.Fail[T](contract.KindOperational, msg)
	}
	if !res.OK && res.Kind == "" {
		logger.Error("operation returned an unclassified failure", "op", op, "reason", res.Reason)
		return contract.Fail[T](contract.KindOperational, msg)
	}
	return res
}
