// Snapshotd is a snapshot compression daemon for browser automation agents.
//
// It compresses accessibility-tree outline snapshots by folding runs of
// structurally similar siblings into single representative lines, keeping
// every element's reference token available for targeting. The engine is
// served over HTTP and, with --stdio, over the Model Context Protocol.
//
// Usage:
//
//	# Start the HTTP daemon with defaults
//	snapshotd
//
//	# Load a config file and override via environment
//	SNAPSHOTD_OUTLINE_MAX_LINES=200 snapshotd --config /etc/snapshotd.yaml
//
//	# Serve MCP tools over stdio for agent integration
//	snapshotd --stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/SJMakin/even-better-playwright-mcp/internal/config"
	"github.com/SJMakin/even-better-playwright-mcp/internal/logging"
	"github.com/SJMakin/even-better-playwright-mcp/internal/server"
	"github.com/SJMakin/even-better-playwright-mcp/internal/services"
	"github.com/SJMakin/even-better-playwright-mcp/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	stdioMode := flag.Bool("stdio", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  snapshotd            Start the HTTP daemon\n")
			fmt.Fprintf(os.Stderr, "  snapshotd --stdio    Serve MCP tools over stdio\n")
			fmt.Fprintf(os.Stderr, "  snapshotd version    Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if *stdioMode {
		if err := runStdioServer(ctx, cfg); err != nil {
			log.Fatalf("Stdio server error: %v", err)
		}
		return
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("snapshotd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the HTTP daemon and blocks until the context is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "starting snapshotd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	svc, err := services.NewSnapshots(cfg.Outline.Options(), cfg.Snapshots.HistorySize, logger)
	if err != nil {
		return fmt.Errorf("initialize snapshot service: %w", err)
	}

	srv, err := server.NewServer(svc, logger, &server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("initialize http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
