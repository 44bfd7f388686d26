package resumetext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	in := "  Jane   Doe \r\n\n\n\nSenior\tEngineer\x00\n\n  Go,  Kubernetes  \n"
	assert.Equal(t, "Jane Doe\n\nSenior Engineer\n\nGo, Kubernetes", Normalize(in))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", Clip("short", 10))
	assert.Equal(t, "alpha beta", Clip("alpha beta gamma", 12))
	assert.Equal(t, "ééé", Clip("éééééé", 3))
	assert.Len(t, Clip(strings.Repeat("a ", DefaultMaxChars), 0), DefaultMaxChars-1)
}

func TestSeedPrompt(t *testing.T) {
	assert.Equal(t, "modern design", SeedPrompt("modern design", ""))
	got := SeedPrompt("modern design", "Jane Doe\nEngineer")
	assert.True(t, strings.HasPrefix(got, "modern design\n\n"))
	assert.Contains(t, got, "Jane Doe\nEngineer")
}

func TestFromPDF_Missing(t *testing.T) {
	_, err := FromPDF(filepath.Join(t.TempDir(), "missing.pdf"), 0)
	require.Error(t, err)
}

func TestFromPDF_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	_, err := FromPDF(path, 0)
	require.Error(t, err)
}
