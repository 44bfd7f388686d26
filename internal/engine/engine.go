package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxToolRounds bounds how many times a backend will answer tool calls for a
// single Invoke before giving up.
const MaxToolRounds = 5

// ErrToolRounds is returned when the model keeps requesting tools past
// MaxToolRounds without producing an answer.
var ErrToolRounds = errors.New("model exceeded tool call limit")

// Capability is a text-generation backend that can be asked for structured
// JSON output and may call tools while producing it.
type Capability interface {
	// Invoke sends instruction to the model. When output is non-nil the model
	// is constrained to that shape. Tools are offered to the model and their
	// calls are answered until the model produces a final response.
	//
	// A nil result with a nil error means the model produced no output.
	// A non-nil error is an operational failure (transport, auth, rate limit).
	Invoke(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error)
}

// Tool is a function the model may call while generating.
type Tool interface {
	Name() string
	Description() string
	Parameters() *Schema
	// Call runs the tool. Implementations should report failures through the
	// returned string so the model can carry on.
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// ModelManager abstracts a local inference backend whose models are
// installed on demand (Ollama).
type ModelManager interface {
	// IsRunning reports whether the inference backend is reachable.
	IsRunning(ctx context.Context) bool

	// ListModels returns the names of all locally available models.
	ListModels(ctx context.Context) ([]string, error)

	// HasModel reports whether the given model name is available locally.
	HasModel(ctx context.Context, name string) bool

	// PullModel downloads a model. The optional callback receives progress updates.
	PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error
}

// ErrModelNotFound is returned by VerifyModel when the backend does not offer
// the configured model.
var ErrModelNotFound = errors.New("model not offered by backend")

// ModelVerifier is implemented by hosted backends that can list the models
// they serve.
type ModelVerifier interface {
	VerifyModel(ctx context.Context) error
}

// callTool dispatches a model tool call. Unknown tools and tool errors are
// reported back to the model as text.
func callTool(ctx context.Context, tools []Tool, name string, args json.RawMessage) string {
	for _, t := range tools {
		if t.Name() != name {
			continue
		}
		out, err := t.Call(ctx, args)
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return out
	}
	return fmt.Sprintf("error: unknown tool %q", name)
}

// finalOutput turns the model's final text into raw JSON. Models sometimes
// wrap JSON in a fenced block or add a sentence around it, so when the text is
// not valid JSON the outermost object is extracted. Text that still does not
// parse is returned as-is and left for the caller's validation to reject.
func finalOutput(text string) json.RawMessage {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := []byte(text[start : end+1])
		if json.Valid(candidate) {
			return json.RawMessage(bytes.Clone(candidate))
		}
	}
	return json.RawMessage(text)
}
