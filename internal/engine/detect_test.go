package engine

import (
	"context"
	"testing"
	"time"
)

func TestDetect_DefaultsToOllama(t *testing.T) {
	c, err := Detect(context.Background(), DetectConfig{OllamaBaseURL: "http://localhost:11434", OllamaModel: "llama3.1"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	e, ok := c.(*OllamaEngine)
	if !ok {
		t.Fatalf("Detect returned %T, want *OllamaEngine", c)
	}
	if e.Name() != "ollama llama3.1" {
		t.Errorf("name = %q, want ollama llama3.1", e.Name())
	}
}

func TestDetect_OpenRouterByKey(t *testing.T) {
	c, err := Detect(context.Background(), DetectConfig{OpenRouterAPIKey: "sk-or-test", OpenRouterModel: "openai/gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if _, ok := c.(*OpenRouterEngine); !ok {
		t.Errorf("Detect returned %T, want *OpenRouterEngine", c)
	}
}

func TestDetect_OpenRouterRequiresKey(t *testing.T) {
	if _, err := Detect(context.Background(), DetectConfig{Backend: BackendOpenRouter}); err == nil {
		t.Fatal("expected error for openrouter without key")
	}
}

func TestDetect_UnknownBackend(t *testing.T) {
	if _, err := Detect(context.Background(), DetectConfig{Backend: "mlx"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestDetect_WrapsTimeout(t *testing.T) {
	c, err := Detect(context.Background(), DetectConfig{Backend: BackendOllama, Timeout: time.Minute})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	tc, ok := c.(*timeoutCapability)
	if !ok {
		t.Fatalf("Detect returned %T, want timeout wrapper", c)
	}
	if _, ok := tc.Unwrap().(*OllamaEngine); !ok {
		t.Errorf("wrapped capability = %T, want *OllamaEngine", tc.Unwrap())
	}
}

func TestModelManagerOf(t *testing.T) {
	c, err := Detect(context.Background(), DetectConfig{Backend: BackendOllama, Timeout: time.Minute})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if _, ok := ModelManagerOf(c); !ok {
		t.Error("expected model manager behind timeout wrapper")
	}

	c, err = Detect(context.Background(), DetectConfig{OpenRouterAPIKey: "sk-or-test"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if _, ok := ModelManagerOf(c); ok {
		t.Error("hosted backend should have no model manager")
	}
}

func TestDescribe(t *testing.T) {
	c, err := Detect(context.Background(), DetectConfig{OpenRouterAPIKey: "sk-or-test", OpenRouterModel: "openai/gpt-4o-mini", Timeout: time.Minute})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got := Describe(c); got != "openrouter openai/gpt-4o-mini" {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe(CapabilityFunc(nil)); got != "unknown backend" {
		t.Errorf("Describe(func) = %q", got)
	}
}

func TestVerifyModel_NoVerifier(t *testing.T) {
	c, err := Detect(context.Background(), DetectConfig{Backend: BackendOllama, Timeout: time.Minute})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if err := VerifyModel(context.Background(), c); err != nil {
		t.Errorf("VerifyModel = %v, want nil", err)
	}
}
