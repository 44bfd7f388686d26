package api

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/storage"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *fakeActions, *storage.Store) {
	t.Helper()
	actions := newFakeActions()
	store := newTestStore(t)
	return MCPDeps{Actions: actions, Sessions: store, Version: "test"}, actions, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestNewMCPServer(t *testing.T) {
	deps, _, _ := newTestMCPDeps(t)
	if NewMCPServer(deps) == nil {
		t.Fatal("expected server")
	}
}

func TestMCPTool_Generate(t *testing.T) {
	deps, _, _ := newTestMCPDeps(t)
	result, err := mcpGenerate(deps)(context.Background(), makeCallToolRequest("generate_resume", map[string]interface{}{
		"prompt": "Modern minimalist design for engineer",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var res contract.Result[contract.Artifact]
	if err := json.Unmarshal([]byte(toolText(t, result)), &res); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !res.OK || !strings.Contains(res.Value.Markup, "Your Name") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMCPTool_Generate_MissingPrompt(t *testing.T) {
	deps, _, _ := newTestMCPDeps(t)
	result, err := mcpGenerate(deps)(context.Background(), makeCallToolRequest("generate_resume", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(toolText(t, result), `"kind":"input_validation_failed"`) {
		t.Fatalf("unexpected text %s", toolText(t, result))
	}
}

func TestMCPTool_Refine(t *testing.T) {
	deps, actions, _ := newTestMCPDeps(t)
	result, err := mcpRefine(deps)(context.Background(), makeCallToolRequest("refine_resume", map[string]interface{}{
		"html":     "<div></div>",
		"css":      "div{}",
		"feedback": "Change colors to blue",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if actions.lastRefine["currentMarkup"] != "<div></div>" {
		t.Fatalf("html not passed through: %+v", actions.lastRefine)
	}
}

func TestMCPTool_SummarizeFeedback(t *testing.T) {
	deps, _, _ := newTestMCPDeps(t)
	result, err := mcpSummarizeFeedback(deps)(context.Background(), makeCallToolRequest("summarize_feedback", map[string]interface{}{
		"resume_template": "<div></div>",
		"user_feedback":   "Please make it blue",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(toolText(t, result), "Make it blue.") {
		t.Fatalf("unexpected text %s", toolText(t, result))
	}
}

func TestMCPTool_GetSession(t *testing.T) {
	deps, _, store := newTestMCPDeps(t)
	if err := store.CreateSession(storage.Session{ID: "s1", Prompt: "Modern design", Markup: "<div></div>", Style: "div{}"}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	result, err := mcpGetSession(deps)(context.Background(), makeCallToolRequest("get_session", map[string]interface{}{"id": "s1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(toolText(t, result), `"id":"s1"`) {
		t.Fatalf("unexpected text %s", toolText(t, result))
	}

	result, _ = mcpGetSession(deps)(context.Background(), makeCallToolRequest("get_session", map[string]interface{}{"id": "nope"}))
	if !result.IsError {
		t.Fatal("expected tool error for unknown session")
	}
}

func TestMCPResource_Recent(t *testing.T) {
	deps, _, store := newTestMCPDeps(t)
	if err := store.CreateSession(storage.Session{ID: "s1", Prompt: "Modern design"}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	contents, err := mcpResourceRecent(deps)(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "vitae://sessions/recent"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, `"prompt":"Modern design"`) {
		t.Fatalf("unexpected resource %s", text)
	}
}

func TestMCPServer_ConcurrentCalls(t *testing.T) {
	deps, _, _ := newTestMCPDeps(t)
	generate := mcpGenerate(deps)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := makeCallToolRequest("generate_resume", map[string]interface{}{"prompt": "Modern minimalist design"})
			if _, err := generate(context.Background(), req); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}
}
