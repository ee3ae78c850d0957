package main

import (
	"context"
	"fmt"

	"github.com/SJMakin/even-better-playwright-mcp/internal/config"
	"github.com/SJMakin/even-better-playwright-mcp/internal/logging"
	"github.com/SJMakin/even-better-playwright-mcp/internal/mcp"
	"github.com/SJMakin/even-better-playwright-mcp/internal/services"
)

// runStdioServer serves the MCP tools over stdio for agent integration.
// Logging goes to stderr; stdout carries the MCP protocol.
func runStdioServer(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := services.NewSnapshots(cfg.Outline.Options(), cfg.Snapshots.HistorySize, logger)
	if err != nil {
		return fmt.Errorf("initialize snapshot service: %w", err)
	}

	mcpServer, err := mcp.NewServer(&mcp.Config{
		Name:    "snapshotd",
		Version: version,
		Logger:  logger.Named("mcp"),
	}, svc)
	if err != nil {
		return fmt.Errorf("initialize mcp server: %w", err)
	}

	if err := mcpServer.Run(ctx); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}
