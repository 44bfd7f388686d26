// Package sanitize cleans model text output before it is treated as a design.
// Every function here is idempotent.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/kalambet/vitae/internal/contract"
)

var (
	fence      = regexp.MustCompile("```[A-Za-z0-9_+#-]*")
	importRule = regexp.MustCompile(`(?i)@import[^;\n]*;?`)
)

// StripFences removes every triple-backtick marker, with its optional
// language tag, and trims surrounding whitespace.
func StripFences(s string) string {
	for strings.Contains(s, "```") {
		s = fence.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// Style cleans a style sheet: fences are stripped and @import rules, which
// pull external resources, are dropped. Removing a rule can join a new fence
// marker, so both steps repeat until nothing changes.
func Style(s string) string {
	for {
		next := strings.TrimSpace(importRule.ReplaceAllString(StripFences(s), ""))
		if next == s {
			return next
		}
		s = next
	}
}

// Elements removed from markup along with their content.
var dropped = map[string]bool{
	"script": true,
	"iframe": true,
	"object": true,
	"embed":  true,
	"link":   true,
	"base":   true,
	"meta":   true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Markup cleans an HTML fragment: fences are stripped, active and external
// elements are removed and the result is wrapped in a resume container unless
// it already is a single element that can hold content. All other bytes are
// kept as written.
func Markup(s string) string {
	var top topLevel
	for {
		next, t := dropActive(StripFences(s))
		if next == s {
			top = t
			break
		}
		s = next
	}
	if s == "" {
		return ""
	}
	if top.roots != 1 || !top.container {
		s = "<div class=\"resume\">\n" + s + "\n</div>"
	}
	return s
}

// topLevel describes the top-level nodes of a fragment.
type topLevel struct {
	roots int
	// container reports whether the last top-level node is a non-void element.
	container bool
}

func dropActive(s string) (string, topLevel) {
	var (
		b         strings.Builder
		top       topLevel
		depth     int
		skip      string
		skipDepth int
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())

		var name string
		if tt == html.StartTagToken || tt == html.EndTagToken || tt == html.SelfClosingTagToken {
			n, _ := z.TagName()
			name = string(n)
		}

		if skip != "" {
			switch {
			case tt == html.StartTagToken && name == skip:
				skipDepth++
			case tt == html.EndTagToken && name == skip:
				skipDepth--
				if skipDepth == 0 {
					skip = ""
				}
			}
			continue
		}
		if dropped[name] {
			if tt == html.StartTagToken && !voidElements[name] {
				skip, skipDepth = name, 1
			}
			continue
		}

		switch tt {
		case html.DoctypeToken:
			continue
		case html.StartTagToken:
			if depth == 0 {
				top.roots++
				top.container = !voidElements[name]
			}
			if !voidElements[name] {
				depth++
			}
		case html.SelfClosingTagToken:
			if depth == 0 {
				top.roots++
				top.container = false
			}
		case html.EndTagToken:
			if depth > 0 {
				depth--
			}
		case html.TextToken:
			if depth == 0 && strings.TrimSpace(raw) != "" {
				top.roots++
				top.container = false
			}
		}
		b.WriteString(raw)
	}
	return strings.TrimSpace(b.String()), top
}

// Artifact sanitizes both parts of a design. It reports false when either
// part is empty afterwards.
func Artifact(markup, style string) (contract.Artifact, bool) {
	a := contract.Artifact{Markup: Markup(markup), Style: Style(style)}
	return a, a.Markup != "" && a.Style != ""
}
