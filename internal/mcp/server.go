package mcp

import (
	"context"

	"issue-lifecycle/internal/analysis"
	"issue-lifecycle/internal/config"
	"issue-lifecycle/internal/lifecycle"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server exposes the lifecycle analyses of one loaded export as MCP tools.
// The record set is loaded once and never mutated, so tool calls may run
// concurrently.
type Server struct {
	cfg       *config.AppConfig
	version   string
	records   []lifecycle.IssueRecord
	ingestion []lifecycle.Exclusion
}

// NewServer creates a new MCP server over an already-ingested record set.
func NewServer(cfg *config.AppConfig, version string, records []lifecycle.IssueRecord, ingestion []lifecycle.Exclusion) *Server {
	return &Server{
		cfg:       cfg,
		version:   version,
		records:   records,
		ingestion: ingestion,
	}
}

// Start serves the tools over stdio until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	server := sdk.NewServer(&sdk.Implementation{Name: "issue-lifecycle", Version: s.version}, nil)
	s.registerTools(server)

	log.Info().Int("issues", len(s.records)).Msg("MCP server listening on stdio")
	return server.Run(ctx, &sdk.StdioTransport{})
}

// engine builds an engine from the configured options with per-call overrides applied.
func (s *Server) engine(override func(*analysis.Options)) (*analysis.Engine, error) {
	opts := s.cfg.Analysis
	if override != nil {
		override(&opts)
	}
	return analysis.NewEngine(opts)
}
