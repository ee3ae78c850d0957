// Package mcp exposes the outline compression engine over the Model
// Context Protocol. Tools delegate to the shared snapshot service; there is
// no transport between the MCP layer and the engine.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SJMakin/even-better-playwright-mcp/internal/logging"
	"github.com/SJMakin/even-better-playwright-mcp/internal/services"
)

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name.
	Name string

	// Version is the server version string.
	Version string

	// Logger for structured logging. Nil disables logging.
	Logger *logging.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "snapshotd",
		Version: "1.0.0",
		Logger:  logging.NewNop(),
	}
}

// Server serves the snapshot tools over MCP.
type Server struct {
	mcp    *mcp.Server
	svc    *services.Snapshots
	logger *logging.Logger
}

// NewServer creates an MCP server around the snapshot service and
// registers its tools.
func NewServer(cfg *Config, svc *services.Snapshots) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if svc == nil {
		return nil, fmt.Errorf("snapshot service is required")
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		svc:    svc,
		logger: cfg.Logger,
	}
	s.registerTools()

	return s, nil
}

// Run serves MCP over the stdio transport until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
