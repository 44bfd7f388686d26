package engine

import (
	"context"
	"io"
	"strings"
	"testing"
)

type mockManager struct {
	isRunning bool
	models    map[string]bool
	pulled    []string
}

func (m *mockManager) IsRunning(_ context.Context) bool { return m.isRunning }
func (m *mockManager) ListModels(_ context.Context) ([]string, error) {
	var names []string
	for n := range m.models {
		names = append(names, n)
	}
	return names, nil
}
func (m *mockManager) HasModel(_ context.Context, name string) bool { return m.models[name] }
func (m *mockManager) PullModel(_ context.Context, name string, cb func(PullProgress)) error {
	m.pulled = append(m.pulled, name)
	if cb != nil {
		cb(PullProgress{Status: "success"})
	}
	return nil
}

func TestEnsureReady_AllModelsPresent(t *testing.T) {
	m := &mockManager{
		isRunning: true,
		models:    map[string]bool{"llama3.1": true},
	}
	err := EnsureReady(context.Background(), m, []string{"llama3.1"}, io.Discard)
	if err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if len(m.pulled) != 0 {
		t.Errorf("expected no pulls, got %v", m.pulled)
	}
}

func TestEnsureReady_PullsMissing(t *testing.T) {
	m := &mockManager{
		isRunning: true,
		models:    map[string]bool{"llama3.1": true},
	}
	var out strings.Builder
	err := EnsureReady(context.Background(), m, []string{"llama3.1", "qwen2.5", "qwen2.5", ""}, &out)
	if err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if len(m.pulled) != 1 || m.pulled[0] != "qwen2.5" {
		t.Errorf("expected a single pull of qwen2.5, got %v", m.pulled)
	}
	if !strings.Contains(out.String(), "model qwen2.5: ready") {
		t.Errorf("progress output = %q, want ready line for qwen2.5", out.String())
	}
}

func TestEnsureReady_EngineDown(t *testing.T) {
	m := &mockManager{isRunning: false, models: map[string]bool{}}
	err := EnsureReady(context.Background(), m, []string{"llama3.1"}, io.Discard)
	if err == nil {
		t.Fatal("expected error when engine is down")
	}
	if !strings.Contains(err.Error(), "ollama serve") {
		t.Errorf("error = %q, want a hint to start ollama", err.Error())
	}
}
