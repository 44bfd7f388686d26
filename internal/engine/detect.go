package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kalambet/vitae/internal/proxy"
)

// Supported backend names.
const (
	BackendOllama     = "ollama"
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
)

// DetectConfig holds parameters for backend selection.
type DetectConfig struct {
	Backend string

	OllamaBaseURL string
	OllamaModel   string

	GeminiAPIKey string
	GeminiModel  string

	OpenRouterAPIKey string
	OpenRouterModel  string

	// Timeout bounds each Invoke. Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// Detect returns the Capability for the configured backend. An empty backend
// selects Gemini when a Gemini key is present, OpenRouter when an OpenRouter
// key is present, and the local Ollama server otherwise.
func Detect(ctx context.Context, cfg DetectConfig) (Capability, error) {
	backend := cfg.Backend
	if backend == "" {
		switch {
		case cfg.GeminiAPIKey != "":
			backend = BackendGemini
		case cfg.OpenRouterAPIKey != "":
			backend = BackendOpenRouter
		default:
			backend = BackendOllama
		}
	}

	var c Capability
	switch backend {
	case BackendOllama:
		c = NewOllamaEngine(cfg.OllamaBaseURL, cfg.OllamaModel)
	case BackendGemini:
		g, err := NewGeminiEngine(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		c = g
	case BackendOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("openrouter backend requires an API key (openrouter.api_key)")
		}
		client := proxy.NewClient(cfg.OpenRouterAPIKey)
		client.SetTimeout(cfg.Timeout)
		c = NewOpenRouterEngine(client, cfg.OpenRouterModel)
	default:
		return nil, fmt.Errorf("unknown engine backend %q (want %s, %s or %s)", backend, BackendOllama, BackendGemini, BackendOpenRouter)
	}

	if cfg.Timeout > 0 {
		c = WithTimeout(c, cfg.Timeout)
	}
	return c, nil
}

// WithTimeout bounds every Invoke on c by d.
func WithTimeout(c Capability, d time.Duration) Capability {
	return &timeoutCapability{next: c, timeout: d}
}

type timeoutCapability struct {
	next    Capability
	timeout time.Duration
}

func (t *timeoutCapability) Invoke(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Invoke(ctx, instruction, output, tools...)
}

// Unwrap returns the capability wrapped by WithTimeout.
func (t *timeoutCapability) Unwrap() Capability { return t.next }

// ModelManagerOf returns the ModelManager behind c, looking through
// WithTimeout wrappers. Hosted backends have none.
func ModelManagerOf(c Capability) (ModelManager, bool) {
	return unwrapTo[ModelManager](c)
}

// Describe returns a short label for the backend behind c, such as
// "gemini gemini-2.5-flash".
func Describe(c Capability) string {
	if n, ok := unwrapTo[interface{ Name() string }](c); ok {
		return n.Name()
	}
	return "unknown backend"
}

// VerifyModel asks the backend behind c whether its configured model is
// offered. Backends that cannot tell report nil.
func VerifyModel(ctx context.Context, c Capability) error {
	if v, ok := unwrapTo[ModelVerifier](c); ok {
		return v.VerifyModel(ctx)
	}
	return nil
}

func unwrapTo[T any](c Capability) (T, bool) {
	for {
		if v, ok := c.(T); ok {
			return v, true
		}
		u, ok := c.(interface{ Unwrap() Capability })
		if !ok {
			var zero T
			return zero, false
		}
		c = u.Unwrap()
	}
}
