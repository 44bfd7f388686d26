package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/kalambet/vitae/internal/action"
	"github.com/kalambet/vitae/internal/brand"
	"github.com/kalambet/vitae/internal/config"
	"github.com/kalambet/vitae/internal/engine"
	"github.com/kalambet/vitae/internal/feedback"
	"github.com/kalambet/vitae/internal/generation"
	"github.com/kalambet/vitae/internal/refinement"
)

func newLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func detectConfig(cfg config.Config) engine.DetectConfig {
	return engine.DetectConfig{
		Backend:          strings.ToLower(cfg.Engine.Backend),
		OllamaBaseURL:    cfg.Ollama.BaseURL,
		OllamaModel:      cfg.Ollama.Model,
		GeminiAPIKey:     cfg.Gemini.APIKey,
		GeminiModel:      cfg.Gemini.Model,
		OpenRouterAPIKey: cfg.OpenRouter.APIKey,
		OpenRouterModel:  cfg.OpenRouter.Model,
		Timeout:          cfg.Engine.Timeout,
	}
}

// buildActions wires the configured backend into the action layer. For a
// local backend the model is pulled first, with progress written to progress.
// A hosted backend that does not offer the configured model is an error.
func buildActions(ctx context.Context, cfg config.Config, logger *slog.Logger, progress io.Writer) (*action.Actions, error) {
	c, err := engine.Detect(ctx, detectConfig(cfg))
	if err != nil {
		return nil, err
	}
	if m, ok := engine.ModelManagerOf(c); ok {
		if err := engine.EnsureReady(ctx, m, []string{cfg.Ollama.Model}, progress); err != nil {
			return nil, err
		}
	}
	if err := engine.VerifyModel(ctx, c); err != nil {
		if errors.Is(err, engine.ErrModelNotFound) {
			return nil, err
		}
		logger.Warn("could not verify model", "backend", engine.Describe(c), "error", err)
	}
	logger.Debug("engine ready", "backend", engine.Describe(c))

	logos := brand.NewLogoResolver(c, logger)
	return action.New(
		generation.New(c, logger, logos),
		refinement.New(c, logger),
		feedback.New(c, logger),
		logger,
	), nil
}
