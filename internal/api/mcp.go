package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/vitae/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. Sessions is optional.
type MCPDeps struct {
	Actions  Actions
	Sessions SessionStore
	Version  string
}

// NewMCPServer creates an MCP server exposing the design actions as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"vitae",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("vitae designs resumes: generate an HTML and CSS layout from a description, then refine it with feedback."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_resume",
			mcp.WithDescription("Generate a new resume design (HTML markup and CSS) from a description of the desired look."),
			mcp.WithString("prompt", mcp.Description("Description of the design, at least 10 characters"), mcp.Required()),
		),
		mcpGenerate(deps),
	)

	s.AddTool(
		mcp.NewTool("refine_resume",
			mcp.WithDescription("Revise an existing resume design according to feedback."),
			mcp.WithString("html", mcp.Description("Current HTML markup of the design"), mcp.Required()),
			mcp.WithString("css", mcp.Description("Current CSS of the design"), mcp.Required()),
			mcp.WithString("feedback", mcp.Description("What to change, at least 10 characters"), mcp.Required()),
		),
		mcpRefine(deps),
	)

	s.AddTool(
		mcp.NewTool("summarize_feedback",
			mcp.WithDescription("Summarize feedback on a resume template and return the template revised to address it."),
			mcp.WithString("resume_template", mcp.Description("The resume template the feedback is about"), mcp.Required()),
			mcp.WithString("user_feedback", mcp.Description("The feedback, at least 10 characters"), mcp.Required()),
		),
		mcpSummarizeFeedback(deps),
	)

	if deps.Sessions != nil {
		s.AddTool(
			mcp.NewTool("get_session",
				mcp.WithDescription("Return a stored design session by id."),
				mcp.WithString("id", mcp.Description("Session id"), mcp.Required()),
			),
			mcpGetSession(deps),
		)

		s.AddResource(
			mcp.NewResource(
				"vitae://sessions/recent",
				"Recent Sessions",
				mcp.WithResourceDescription("The 10 most recently updated design sessions (without markup)"),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceRecent(deps),
		)
	}

	return s
}

func mcpGenerate(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		res := deps.Actions.SubmitGeneration(ctx, map[string]any{"promptText": args["prompt"]})
		return mcpResult(res, res.OK)
	}
}

func mcpRefine(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		res := deps.Actions.SubmitRefinement(ctx, map[string]any{
			"currentMarkup": args["html"],
			"currentStyle":  args["css"],
			"feedback":      args["feedback"],
		})
		return mcpResult(res, res.OK)
	}
}

func mcpSummarizeFeedback(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		res := deps.Actions.SubmitFeedbackSummary(ctx, map[string]any{
			"resumeTemplate": args["resume_template"],
			"userFeedback":   args["user_feedback"],
		})
		return mcpResult(res, res.OK)
	}
}

func mcpGetSession(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		sess, err := deps.Sessions.GetSession(id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("session %s not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load session: %v", err)), nil
		}
		return mcpResult(viewOf(sess), true)
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sessions, err := deps.Sessions.ListSessions(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}

		type sessionSummary struct {
			ID        string `json:"id"`
			Prompt    string `json:"prompt"`
			Revision  int    `json:"revision"`
			UpdatedAt string `json:"updatedAt"`
		}
		summaries := make([]sessionSummary, len(sessions))
		for i, s := range sessions {
			summaries[i] = sessionSummary{
				ID:        s.ID,
				Prompt:    s.Prompt,
				Revision:  s.Revision,
				UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sessions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

// mcpResult renders v as JSON text. Failed results are flagged as tool errors
// so the client sees them as such, but the body keeps the same shape.
func mcpResult(v any, ok bool) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	if !ok {
		return mcpError(string(b)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
