// Package mcp provides an MCP (Model Context Protocol) server for serialtemp.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/serialtemp/internal/config"
	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/nvandessel/serialtemp/internal/pulse"
	"github.com/nvandessel/serialtemp/internal/ratelimit"
	"github.com/nvandessel/serialtemp/internal/sequence"
)

// Server wraps the MCP SDK server and exposes the generator and encoder as tools.
type Server struct {
	server       *sdk.Server
	root         string
	settings     *config.Config
	generator    *sequence.Generator
	encoder      *pulse.Encoder
	logger       *slog.Logger
	decisions    *logging.DecisionLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name     string         // Server name (e.g., "serialtemp")
	Version  string         // Server version
	Root     string         // Project root; generated files must stay below it
	Settings *config.Config // Generation and timing settings; nil uses defaults
	Logger   *slog.Logger   // Operational logger; nil discards
}

// NewServer creates a new MCP server with serialtemp tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	generator, err := sequence.NewGenerator(settings.Generation.Sequence())
	if err != nil {
		return nil, err
	}
	encoder, err := pulse.NewEncoder(settings.Timing)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:       mcpServer,
		root:         root,
		settings:     settings,
		generator:    generator,
		encoder:      encoder,
		logger:       logger,
		decisions:    logging.NewDecisionLogger(filepath.Join(root, ".serialtemp"), settings.Logging.Level),
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server started", "root", s.root)
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.decisions.Close()
	return err
}

// Close releases the decision log.
func (s *Server) Close() error {
	s.decisions.Close()
	return nil
}
