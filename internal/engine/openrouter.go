package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kalambet/vitae/internal/proxy"
)

// OpenRouterEngine implements Capability against any OpenAI-compatible chat
// completions endpoint, OpenRouter by default.
type OpenRouterEngine struct {
	client *proxy.Client
	model  string
}

// NewOpenRouterEngine wraps an existing proxy client.
func NewOpenRouterEngine(client *proxy.Client, model string) *OpenRouterEngine {
	return &OpenRouterEngine{client: client, model: model}
}

func (e *OpenRouterEngine) Name() string { return "openrouter " + e.model }

// VerifyModel checks the configured model against the provider's model list.
func (e *OpenRouterEngine) VerifyModel(ctx context.Context) error {
	models, err := e.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing openrouter models: %w", err)
	}
	for _, m := range models {
		if m.ID == e.model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotFound, e.model)
}

func (e *OpenRouterEngine) Invoke(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error) {
	req := proxy.CompletionRequest{
		Model:    e.model,
		Messages: []proxy.Message{{Role: "user", Content: instruction}},
	}
	if output != nil {
		schema, err := json.Marshal(output)
		if err != nil {
			return nil, fmt.Errorf("encoding output schema: %w", err)
		}
		req.ResponseFormat = &proxy.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &proxy.JSONSchema{Name: "output", Schema: schema},
		}
	}
	for _, t := range tools {
		params, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("encoding parameters for %s: %w", t.Name(), err)
		}
		req.Tools = append(req.Tools, proxy.ToolDef{
			Type: "function",
			Function: proxy.FunctionDef{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}

	for range MaxToolRounds {
		resp, err := e.client.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, nil
		}
		reply := resp.Choices[0].Message
		if len(reply.ToolCalls) == 0 {
			return finalOutput(reply.Content), nil
		}

		req.Messages = append(req.Messages, reply)
		for _, tc := range reply.ToolCalls {
			req.Messages = append(req.Messages, proxy.Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				Content:    callTool(ctx, tools, tc.Function.Name, json.RawMessage(tc.Function.Arguments)),
			})
		}
	}
	return nil, ErrToolRounds
}
