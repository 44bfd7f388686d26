package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Revision sources.
const (
	SourceGenerate = "generate"
	SourceEdit     = "edit"
	SourceRefine   = "refine"
)

// Session is a caller's current design together with the prompt it came from.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Prompt    string
	Markup    string
	Style     string
	Revision  int
}

// Revision is one entry of a session's history.
type Revision struct {
	SessionID string
	Number    int
	Source    string // "generate", "edit" or "refine"
	Feedback  string // refinement feedback, empty otherwise
	Markup    string
	Style     string
	CreatedAt time.Time
}
