// Package resumetext extracts plain text from an existing resume so it can
// seed a generation prompt.
package resumetext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxChars caps how much extracted text is appended to a prompt.
const DefaultMaxChars = 6000

// FromPDF returns the text content of the PDF at path with whitespace
// normalized and clipped to maxChars characters (0 means DefaultMaxChars).
func FromPDF(path string, maxChars int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", path, err)
	}

	text := Normalize(buf.String())
	if text == "" {
		return "", fmt.Errorf("%s contains no extractable text", path)
	}
	return Clip(text, maxChars), nil
}

// Normalize collapses runs of spaces within lines, drops control characters
// and removes blank-line runs.
func Normalize(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && r != '\t' {
				return -1
			}
			return r
		}, line)
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Clip shortens s to at most max characters, cutting at a word boundary.
func Clip(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxChars
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexAny(cut, " \n"); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// SeedPrompt appends extracted resume text to a design prompt.
func SeedPrompt(designPrompt, resumeText string) string {
	if resumeText == "" {
		return designPrompt
	}
	return designPrompt + "\n\nBase the section headings and placeholder structure on this existing resume:\n" + resumeText
}
