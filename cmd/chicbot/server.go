package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

	"github.com/chicbot/chicbot/internal/api"
	"github.com/chicbot/chicbot/internal/catalog"
	"github.com/chicbot/chicbot/internal/config"
	"github.com/chicbot/chicbot/internal/conversation"
	"github.com/chicbot/chicbot/internal/extract"
	"github.com/chicbot/chicbot/internal/inference"
	"github.com/chicbot/chicbot/internal/llm"
	"github.com/chicbot/chicbot/internal/pipeline"
	"github.com/chicbot/chicbot/internal/respond"
	"github.com/chicbot/chicbot/internal/search"
	"github.com/chicbot/chicbot/internal/storage"
	"github.com/chicbot/chicbot/internal/translate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chicbot server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running chicbot server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chicbot system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "chicbot.pid")
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

func runServer() error {
	fmt.Fprintf(os.Stderr, "chicbot version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/api/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("chicbot is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("chicbot is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Check model server readiness and warm up the classifiers.
	classifier := inference.New(cfg.Inference.BaseURL)
	if err := inference.EnsureReady(ctx, classifier, os.Stderr); err != nil {
		return err
	}

	// Open storage and load the catalog into memory.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	products, err := store.ListProducts()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if len(products) == 0 {
		printWarning("catalog is empty — run 'chicbot ingest --csv <file>' to import products")
	}
	slog.Info("catalog loaded", "products", len(products))
	engine := search.NewEngine(catalog.NewStore(products))

	// Translation and extraction share the chat-completion client.
	// Without an API key both degrade: replies stay in English and
	// entity resolution falls back to the rule-based rewriter.
	var translator *translate.Translator
	var extractor *extract.Extractor
	if cfg.LLM.APIKey == "" {
		printWarning("CHICBOT_LLM_API_KEY not set — translation and entity extraction disabled")
		translator = translate.New(nil)
		extractor = extract.New(nil)
	} else {
		chatClient := llm.NewClientWithBaseURL(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
		translator = translate.New(chatClient)
		extractor = extract.New(chatClient)
	}

	sessions := conversation.NewManager()
	responder := respond.NewGenerator(translator, logger)
	bot := pipeline.New(classifier, translator, extractor, responder, engine, cfg.Search.MaxResults, sessions, store, logger)

	handler := api.NewHandler(api.Deps{
		Bot:        bot,
		Engine:     engine,
		Store:      store,
		MaxResults: cfg.Search.MaxResults,
		APIToken:   cfg.API.Token,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Bot:        bot,
		Engine:     engine,
		Store:      store,
		Sessions:   sessions,
		MaxResults: cfg.Search.MaxResults,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "chicbot listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("chicbot is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop chicbot (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to chicbot (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/api/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	// Check the model server hosting the classifiers.
	infResp, err := client.Get(cfg.Inference.BaseURL + "/health")
	if err != nil {
		printStatus("Model server", "not running")
	} else {
		infResp.Body.Close()
		printStatus("Model server", "running at %s", cfg.Inference.BaseURL)
	}

	if cfg.LLM.APIKey == "" {
		printStatus("LLM", "disabled (no API key)")
	} else {
		printStatus("LLM", "%s", cfg.LLM.Model)
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
