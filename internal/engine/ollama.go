package engine

import (
	"context"
	"encoding/json"

	"github.com/kalambet/vitae/internal/ollama"
)

// OllamaEngine adapts the internal/ollama.Client to the Capability and
// ModelManager interfaces.
type OllamaEngine struct {
	client *ollama.Client
	model  string
}

// NewOllamaEngine creates an OllamaEngine backed by an Ollama server at
// baseURL, generating with model.
func NewOllamaEngine(baseURL, model string) *OllamaEngine {
	return &OllamaEngine{client: ollama.New(baseURL), model: model}
}

func (e *OllamaEngine) Name() string { return "ollama " + e.model }

func (e *OllamaEngine) Invoke(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error) {
	msgs := []ollama.Message{{Role: "user", Content: instruction}}
	format := ollamaSchema(output)
	defs := ollamaTools(tools)

	for range MaxToolRounds {
		reply, err := e.client.Chat(ctx, e.model, msgs, format, defs)
		if err != nil {
			return nil, err
		}
		if len(reply.ToolCalls) == 0 {
			return finalOutput(reply.Content), nil
		}

		msgs = append(msgs, reply)
		for _, tc := range reply.ToolCalls {
			msgs = append(msgs, ollama.Message{
				Role:     "tool",
				Content:  callTool(ctx, tools, tc.Function.Name, tc.Function.Arguments),
				ToolName: tc.Function.Name,
			})
		}
	}
	return nil, ErrToolRounds
}

func (e *OllamaEngine) IsRunning(ctx context.Context) bool {
	return e.client.IsRunning(ctx)
}

func (e *OllamaEngine) ListModels(ctx context.Context) ([]string, error) {
	return e.client.ListModels(ctx)
}

func (e *OllamaEngine) HasModel(ctx context.Context, name string) bool {
	return e.client.HasModel(ctx, name)
}

func (e *OllamaEngine) PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error {
	var cb func(ollama.PullProgress)
	if onProgress != nil {
		cb = func(p ollama.PullProgress) {
			onProgress(PullProgress{
				Status:    p.Status,
				Total:     p.Total,
				Completed: p.Completed,
			})
		}
	}
	return e.client.PullModel(ctx, name, cb)
}

func ollamaSchema(s *Schema) *ollama.Schema {
	if s == nil {
		return nil
	}
	out := &ollama.Schema{
		Type:     s.Type,
		Required: s.Required,
	}
	if s.Properties != nil {
		out.Properties = make(map[string]ollama.SchemaProperty, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = ollama.SchemaProperty{
				Type:        v.Type,
				Description: v.Description,
				MinLength:   v.MinLength,
				Format:      v.Format,
			}
		}
	}
	return out
}

func ollamaTools(tools []Tool) []ollama.Tool {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]ollama.Tool, len(tools))
	for i, t := range tools {
		defs[i] = ollama.Tool{
			Type: "function",
			Function: ollama.ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  ollamaSchema(t.Parameters()),
			},
		}
	}
	return defs
}
