package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiEngine implements Capability on top of the Gemini API.
type GeminiEngine struct {
	cli   *genai.Client
	model string
}

// NewGeminiEngine creates a Gemini-backed Capability. An empty apiKey falls
// back to the GEMINI_API_KEY / GOOGLE_API_KEY environment variables read by
// the genai client.
func NewGeminiEngine(ctx context.Context, apiKey, model string) (*GeminiEngine, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiEngine{cli: cli, model: model}, nil
}

func (g *GeminiEngine) Name() string { return "gemini " + g.model }

func (g *GeminiEngine) Invoke(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{}
	// Gemini rejects a JSON response type combined with function calling.
	// With tools the reply shape comes from the instruction and finalOutput.
	if output != nil && len(tools) == 0 {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiSchema(output)
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  geminiSchema(t.Parameters()),
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: instruction}}}}

	for range MaxToolRounds {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return nil, fmt.Errorf("gemini generate: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, nil
		}
		reply := resp.Candidates[0].Content

		var (
			text      strings.Builder
			responses []*genai.Part
		)
		for _, part := range reply.Parts {
			if part.FunctionCall != nil {
				args, _ := json.Marshal(part.FunctionCall.Args)
				result := callTool(ctx, tools, part.FunctionCall.Name, args)
				responses = append(responses, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       part.FunctionCall.ID,
					Name:     part.FunctionCall.Name,
					Response: map[string]any{"output": result},
				}})
				continue
			}
			text.WriteString(part.Text)
		}

		if len(responses) == 0 {
			return finalOutput(text.String()), nil
		}
		contents = append(contents, reply, &genai.Content{Role: "user", Parts: responses})
	}
	return nil, ErrToolRounds
}

func geminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     geminiType(s.Type),
		Required: s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			p := &genai.Schema{Type: geminiType(v.Type), Description: v.Description}
			if v.MinLength > 0 {
				n := int64(v.MinLength)
				p.MinLength = &n
			}
			out.Properties[k] = p
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}
