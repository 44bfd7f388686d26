package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/vitae/internal/api"
	"github.com/kalambet/vitae/internal/config"
	"github.com/kalambet/vitae/internal/engine"
	"github.com/kalambet/vitae/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the vitae server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running vitae server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vitae system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio (for MCP clients)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPStdio()
	},
}

func init() {
	startCmd.Flags().Bool("mcp", false, "also serve MCP tools on stdin/stdout")
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "vitae.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "vitae version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level, os.Stderr)
	slog.SetDefault(logger)

	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	actions, err := buildActions(ctx, cfg, logger, os.Stderr)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing storage", "error", err)
		}
	}()

	if cfg.Server.APIToken == "" {
		logger.Warn("no API token configured; /v1 routes are unauthenticated")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: api.NewHandler(api.Deps{
			Actions:  actions,
			Sessions: store,
			Token:    cfg.Server.APIToken,
			Logger:   logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout(cfg.Engine.Timeout),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("vitae listening", "addr", addr, "backend", detectConfig(cfg).Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{Actions: actions, Sessions: store, Version: version})
		g.Go(func() error {
			logger.Info("MCP server started (stdio transport)")
			err := server.NewStdioServer(mcpSrv).Listen(gctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
				logger.Error("MCP stdio server error", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// runMCPStdio serves only the MCP tools. stdout carries the protocol, so
// logs go to stderr.
func runMCPStdio() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	actions, err := buildActions(ctx, cfg, logger, os.Stderr)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	mcpSrv := api.NewMCPServer(api.MCPDeps{Actions: actions, Sessions: store, Version: version})
	err = server.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		return fmt.Errorf("vitae is not running (no PID file): %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("could not find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		removePIDFile(pidPath)
		return fmt.Errorf("could not stop vitae (PID %d): %w", pid, err)
	}

	printSuccess("Sent stop signal to vitae (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	running := false
	if resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)); err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		running = resp.StatusCode == http.StatusOK
		if running {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	c, err := engine.Detect(ctx, detectConfig(cfg))
	switch {
	case err != nil:
		printStatus("Engine", "%v", err)
	default:
		label := engine.Describe(c)
		if m, ok := engine.ModelManagerOf(c); ok {
			state := "not running"
			if m.IsRunning(ctx) {
				state = "running"
				if !m.HasModel(ctx, cfg.Ollama.Model) {
					state += colorize(styleWarning, " (model not pulled)")
				}
			}
			printStatus("Engine", "%s at %s, %s", label, cfg.Ollama.BaseURL, state)
			break
		}
		switch err := engine.VerifyModel(ctx, c); {
		case errors.Is(err, engine.ErrModelNotFound):
			label += colorize(styleWarning, " (model not found)")
		case err != nil:
			label += colorize(styleWarning, " (model list unavailable)")
		}
		printStatus("Engine", "%s", label)
	}

	if running {
		if ac, err := newAPIClient(); err == nil {
			var sessions []sessionJSON
			if err := ac.getJSON(ctx, "/v1/sessions?limit=100", &sessions); err == nil {
				printStatus("Sessions", "%s", countLabel(len(sessions), 100))
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

// requestTimeout bounds a whole design request: the engine timeout plus room
// for a logo lookup. Zero means no limit, as for the engine.
func requestTimeout(engineTimeout time.Duration) time.Duration {
	if engineTimeout <= 0 {
		return 0
	}
	return engineTimeout + 30*time.Second
}

func countLabel(count, limit int) string {
	if count >= limit {
		return fmt.Sprintf("%d+", count)
	}
	return fmt.Sprintf("%d", count)
}
