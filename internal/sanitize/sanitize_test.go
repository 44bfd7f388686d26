package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", "  body { color: red; }  ", "body { color: red; }"},
		{"language tag", "```css\nbody{}\n```", "body{}"},
		{"bare fence", "```\n<div></div>\n```", "<div></div>"},
		{"fence only", "```css```", ""},
		{"several blocks", "```html\n<p>a</p>\n```\ntext\n```js\nx\n```", "<p>a</p>\n\ntext\n\nx"},
		{"plus and hash tags", "```c++\nx\n```\n```c#\ny\n```", "x\n\n\ny"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripFences(got), "not idempotent")
		})
	}
}

func TestStyle_DropsImports(t *testing.T) {
	in := "```css\n@import url('https://fonts.googleapis.com/css2?family=Inter');\nbody { font-family: system-ui; }\n```"
	got := Style(in)
	assert.Equal(t, "body { font-family: system-ui; }", got)
	assert.Equal(t, got, Style(got))
}

func TestStyle_ImportRemovalJoinsFence(t *testing.T) {
	got := Style("``@import x;`h1{}")
	assert.NotContains(t, got, "```")
	assert.Equal(t, got, Style(got))
}

func TestMarkup_SingleRootKept(t *testing.T) {
	in := "```html\n<div class=\"resume\"><h1>Your Name</h1><img src=\"https://logo.clearbit.com/stripe.com\"></div>\n```"
	assert.Equal(t, `<div class="resume"><h1>Your Name</h1><img src="https://logo.clearbit.com/stripe.com"></div>`, Markup(in))
}

func TestMarkup_WrapsSeveralRoots(t *testing.T) {
	got := Markup("<header>Your Name</header>\n<main>Experience</main>")
	assert.True(t, strings.HasPrefix(got, `<div class="resume">`), got)
	assert.True(t, strings.HasSuffix(got, "</div>"), got)
	assert.Contains(t, got, "<header>Your Name</header>")
	assert.Equal(t, got, Markup(got), "not idempotent")
}

func TestMarkup_LooseTextCountsAsRoot(t *testing.T) {
	got := Markup("Here is your resume: <div>body</div>")
	assert.True(t, strings.HasPrefix(got, `<div class="resume">`), got)
}

func TestMarkup_DropsActiveElements(t *testing.T) {
	in := `<div class="resume"><script>alert(1)</script><link rel="stylesheet" href="x.css"><iframe src="https://e.com"><p>x</p></iframe><meta charset="utf-8"><p>kept</p></div>`
	got := Markup(in)
	assert.Equal(t, `<div class="resume"><p>kept</p></div>`, got)
	assert.Equal(t, got, Markup(got))
}

func TestMarkup_WrapsBareText(t *testing.T) {
	got := Markup("Here is your resume")
	assert.Equal(t, "<div class=\"resume\">\nHere is your resume\n</div>", got)
	assert.Equal(t, got, Markup(got), "not idempotent")
}

func TestMarkup_WrapsLoneVoidElement(t *testing.T) {
	assert.Equal(t, "<div class=\"resume\">\n<img src=\"x.png\">\n</div>", Markup(`<img src="x.png">`))
	assert.Equal(t, "<div class=\"resume\">\n<hr/>\n</div>", Markup("<hr/>"))
}

func TestMarkup_ElementRemovalJoinsFence(t *testing.T) {
	got := Markup("``<script></script>`css body")
	assert.NotContains(t, got, "```")
	assert.Equal(t, "<div class=\"resume\">\nbody\n</div>", got)
	assert.Equal(t, got, Markup(got), "not idempotent")
}

func TestMarkup_DropsDoctype(t *testing.T) {
	assert.Equal(t, "<div>x</div>", Markup("<!DOCTYPE html>\n<div>x</div>"))
}

func TestMarkup_Empty(t *testing.T) {
	assert.Empty(t, Markup("```html```"))
	assert.Empty(t, Markup("<script>only()</script>"))
}

func TestArtifact(t *testing.T) {
	a, ok := Artifact("```html\n<div>x</div>\n```", "```css\ndiv{}\n```")
	assert.True(t, ok)
	assert.Equal(t, "<div>x</div>", a.Markup)
	assert.Equal(t, "div{}", a.Style)

	_, ok = Artifact("<div>x</div>", "```css```")
	assert.False(t, ok)

	a, ok = Artifact("Here is your resume", "body{}")
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(a.Markup, `<div class="resume">`), a.Markup)
}
