package engine

import (
	"context"
	"encoding/json"
)

// CapabilityFunc adapts an ordinary function to the Capability interface.
type CapabilityFunc func(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error)

func (f CapabilityFunc) Invoke(ctx context.Context, instruction string, output *Schema, tools ...Tool) (json.RawMessage, error) {
	return f(ctx, instruction, output, tools...)
}

// FuncTool adapts a function to the Tool interface.
type FuncTool struct {
	ToolName        string
	ToolDescription string
	Schema          *Schema
	Fn              func(ctx context.Context, args json.RawMessage) (string, error)
}

func (t FuncTool) Name() string        { return t.ToolName }
func (t FuncTool) Description() string { return t.ToolDescription }
func (t FuncTool) Parameters() *Schema { return t.Schema }

func (t FuncTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	return t.Fn(ctx, args)
}
