//go:build integration

package brand

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalambet/vitae/internal/engine"
)

func TestResolve_RealOllama(t *testing.T) {
	e := engine.NewOllamaEngine("http://localhost:11434", "llama3.1")
	if !e.IsRunning(context.Background()) {
		t.Skip("Ollama is not running, skipping integration test")
	}
	if !e.HasModel(context.Background(), "llama3.1") {
		t.Skip("llama3.1 model not available, skipping integration test")
	}

	r := NewLogoResolver(e, nil)
	got := r.Resolve(context.Background(), "Spotify")
	require.Truef(t, strings.HasPrefix(got, LogoEndpoint), "Resolve(Spotify) = %q, want a %s URL", got, LogoEndpoint)
	t.Logf("logo: %s", got)
}
