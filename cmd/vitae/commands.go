package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/vitae/internal/action"
	"github.com/kalambet/vitae/internal/config"
	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/render"
	"github.com/kalambet/vitae/internal/resumetext"
)

// designer is what the design commands call: the running server, or the
// action layer in-process with --local.
type designer interface {
	Generate(ctx context.Context, req contract.GenerationRequest) (contract.Result[contract.Artifact], error)
	Refine(ctx context.Context, req contract.RefinementRequest) (contract.Result[contract.Artifact], error)
	Summarize(ctx context.Context, req contract.FeedbackRequest) (contract.Result[contract.FeedbackSummary], error)
}

type localDesigner struct {
	actions *action.Actions
}

func (l localDesigner) Generate(ctx context.Context, req contract.GenerationRequest) (contract.Result[contract.Artifact], error) {
	return l.actions.SubmitGeneration(ctx, req), nil
}

func (l localDesigner) Refine(ctx context.Context, req contract.RefinementRequest) (contract.Result[contract.Artifact], error) {
	return l.actions.SubmitRefinement(ctx, req), nil
}

func (l localDesigner) Summarize(ctx context.Context, req contract.FeedbackRequest) (contract.Result[contract.FeedbackSummary], error) {
	return l.actions.SubmitFeedbackSummary(ctx, req), nil
}

var newDesigner = func(ctx context.Context, local bool) (designer, error) {
	if !local {
		return newAPIClient()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log.Level, os.Stderr)
	actions, err := buildActions(ctx, cfg, logger, os.Stderr)
	if err != nil {
		return nil, err
	}
	return localDesigner{actions: actions}, nil
}

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate a new resume design",
	Long: `Generate a new resume design from a description of the desired look.

Examples:
  vitae generate "Modern minimalist design for a software engineer"
  vitae generate "Two-column layout with a navy sidebar" --out ./design
  vitae generate "Clean design, keep my sections" --from-pdf ./cv.pdf --local
  vitae generate "Bold header, Stripe logo" --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromPDF, _ := cmd.Flags().GetString("from-pdf")
		out, _ := cmd.Flags().GetString("out")
		local, _ := cmd.Flags().GetBool("local")
		save, _ := cmd.Flags().GetBool("save")
		if save && local {
			return fmt.Errorf("--save needs the server; drop --local")
		}

		promptText, err := buildPrompt(strings.Join(args, " "), fromPDF)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if save {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			printStep("Generating design...")
			res, err := client.sessionAction(ctx, "/v1/sessions", contract.GenerationRequest{PromptText: promptText})
			if err != nil {
				return err
			}
			if err := reportResult(res.Result.OK, res.Result.Kind, res.Result.Reason); err != nil {
				return err
			}
			printSuccess("Saved session %s (revision %d)", res.Session.ID, res.Session.Revision)
			return writeArtifact(cmd.OutOrStdout(), res.Result.Value, out)
		}

		d, err := newDesigner(ctx, local)
		if err != nil {
			return err
		}
		printStep("Generating design...")
		res, err := d.Generate(ctx, contract.GenerationRequest{PromptText: promptText})
		if err != nil {
			return err
		}
		if err := reportResult(res.OK, res.Kind, res.Reason); err != nil {
			return err
		}
		return writeArtifact(cmd.OutOrStdout(), res.Value, out)
	},
}

func init() {
	generateCmd.Flags().String("from-pdf", "", "seed the prompt with the text of an existing resume PDF")
	generateCmd.Flags().String("out", "", "directory to write design.html, design.css and resume.html (default: print JSON)")
	generateCmd.Flags().Bool("local", false, "run the model in-process instead of through the server")
	generateCmd.Flags().Bool("save", false, "store the result as a session on the server")
}

func buildPrompt(description, pdfPath string) (string, error) {
	if pdfPath == "" {
		return description, nil
	}
	text, err := resumetext.FromPDF(pdfPath, 0)
	if err != nil {
		return "", err
	}
	return resumetext.SeedPrompt(description, text), nil
}

// --- refine ---

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Refine an existing design with feedback",
	Long: `Refine an existing design with feedback.

Examples:
  vitae refine --html design.html --css design.css --feedback "Change colors to blue" --out ./design
  vitae refine --session 3f1c... --feedback "Make the header larger"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		htmlPath, _ := cmd.Flags().GetString("html")
		cssPath, _ := cmd.Flags().GetString("css")
		fb, _ := cmd.Flags().GetString("feedback")
		sessionID, _ := cmd.Flags().GetString("session")
		out, _ := cmd.Flags().GetString("out")
		local, _ := cmd.Flags().GetBool("local")
		ctx := cmd.Context()

		if sessionID != "" {
			if local {
				return fmt.Errorf("--session needs the server; drop --local")
			}
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			printStep("Refining session %s...", sessionID)
			res, err := client.sessionAction(ctx, "/v1/sessions/"+sessionID+"/refine", map[string]string{"feedback": fb})
			if err != nil {
				return err
			}
			if err := reportResult(res.Result.OK, res.Result.Kind, res.Result.Reason); err != nil {
				return err
			}
			printSuccess("Session %s is now at revision %d", res.Session.ID, res.Session.Revision)
			return writeArtifact(cmd.OutOrStdout(), res.Result.Value, out)
		}

		if htmlPath == "" || cssPath == "" {
			return fmt.Errorf("either --session or both --html and --css are required")
		}
		markup, err := os.ReadFile(htmlPath)
		if err != nil {
			return fmt.Errorf("reading html: %w", err)
		}
		style, err := os.ReadFile(cssPath)
		if err != nil {
			return fmt.Errorf("reading css: %w", err)
		}

		d, err := newDesigner(ctx, local)
		if err != nil {
			return err
		}
		printStep("Refining design...")
		res, err := d.Refine(ctx, contract.RefinementRequest{
			CurrentMarkup: string(markup),
			CurrentStyle:  string(style),
			Feedback:      fb,
		})
		if err != nil {
			return err
		}
		if err := reportResult(res.OK, res.Kind, res.Reason); err != nil {
			return err
		}
		return writeArtifact(cmd.OutOrStdout(), res.Value, out)
	},
}

func init() {
	refineCmd.Flags().String("html", "", "file with the current HTML markup")
	refineCmd.Flags().String("css", "", "file with the current CSS")
	refineCmd.Flags().String("feedback", "", "what to change (at least 10 characters)")
	refineCmd.Flags().String("session", "", "refine a stored session instead of files")
	refineCmd.Flags().String("out", "", "directory to write design.html, design.css and resume.html (default: print JSON)")
	refineCmd.Flags().Bool("local", false, "run the model in-process instead of through the server")
}

// --- summarize ---

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize feedback on a template and revise it",
	RunE: func(cmd *cobra.Command, args []string) error {
		templatePath, _ := cmd.Flags().GetString("template")
		fb, _ := cmd.Flags().GetString("feedback")
		out, _ := cmd.Flags().GetString("out")
		local, _ := cmd.Flags().GetBool("local")

		if templatePath == "" {
			return fmt.Errorf("--template is required")
		}
		tmpl, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}

		ctx := cmd.Context()
		d, err := newDesigner(ctx, local)
		if err != nil {
			return err
		}
		res, err := d.Summarize(ctx, contract.FeedbackRequest{ResumeTemplate: string(tmpl), UserFeedback: fb})
		if err != nil {
			return err
		}
		if err := reportResult(res.OK, res.Kind, res.Reason); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), res.Value.Summary)
		if out != "" {
			if err := os.WriteFile(out, []byte(res.Value.RefinedTemplate), 0o644); err != nil {
				return fmt.Errorf("writing refined template: %w", err)
			}
			printSuccess("Wrote %s", out)
		}
		return nil
	},
}

func init() {
	summarizeCmd.Flags().String("template", "", "file with the resume template")
	summarizeCmd.Flags().String("feedback", "", "the feedback to summarize (at least 10 characters)")
	summarizeCmd.Flags().String("out", "", "file to write the refined template to")
	summarizeCmd.Flags().Bool("local", false, "run the model in-process instead of through the server")
}

// reportResult prints a failed result's reason and returns a non-nil error
// for it.
func reportResult(ok bool, kind contract.Kind, reason string) error {
	if ok {
		return nil
	}
	printError("%s", reason)
	return fail{kind: string(kind)}
}

// writeArtifact prints a as JSON, or writes it into dir as separate files
// plus a printable page.
func writeArtifact(w io.Writer, a contract.Artifact, dir string) error {
	if dir == "" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	doc, err := render.Document(a, "Resume")
	if err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	files := []struct{ name, content string }{
		{"design.html", a.Markup},
		{"design.css", a.Style},
		{"resume.html", doc},
	}
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := os.WriteFile(p, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
	}
	printSuccess("Wrote %s", filepath.Join(dir, "resume.html"))
	return nil
}

// --- session ---

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored design sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var sessions []sessionJSON
		if err := client.getJSON(cmd.Context(), fmt.Sprintf("/v1/sessions?limit=%d", limit), &sessions); err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  r%d  %s\n",
				colorize(styleLabel, s.ID),
				colorize(styleMuted, s.UpdatedAt.Local().Format("2006-01-02 15:04")),
				s.Revision,
				truncate(s.Prompt, 60),
			)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var s sessionJSON
		if err := client.getJSON(cmd.Context(), "/v1/sessions/"+args[0], &s); err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

var sessionDocumentCmd = &cobra.Command{
	Use:   "document <id>",
	Short: "Write a session's printable page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		doc, err := client.getText(cmd.Context(), "/v1/sessions/"+args[0]+"/document")
		if err != nil {
			return err
		}
		if out == "" {
			_, err := io.WriteString(cmd.OutOrStdout(), doc)
			return err
		}
		if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
			return err
		}
		printSuccess("Wrote %s", out)
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.deleteSession(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted session %s", args[0])
		return nil
	},
}

func init() {
	sessionListCmd.Flags().Int("limit", 20, "maximum number of sessions to list")
	sessionDocumentCmd.Flags().String("out", "", "output file (default: stdout)")
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionDocumentCmd, sessionDeleteCmd)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s %s\n", colorize(styleLabel, k.Key), k.Value, colorize(styleMuted, "("+k.EnvVar+")"))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s", key)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configSetCmd.Long = "Set a configuration value. Valid keys:\n  " + strings.Join(config.ValidKeys(), "\n  ")
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd)
}
