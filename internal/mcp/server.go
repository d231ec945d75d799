package mcp

import (
	"fmt"

	"kitref/internal/catalog"
	"kitref/internal/config"
	"kitref/internal/contentstore"
	"kitref/internal/logging"
	"kitref/internal/recommend"

	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Server wires the catalog, cache and scorer behind MCP tools.
type Server struct {
	config  *config.Config
	logger  *logging.AppLogger
	catalog *catalog.Catalog
	cache   *contentstore.Cache

	records  []recommend.TemplateRecord
	profiles map[string]recommend.MatchingProfile

	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. Initialization that can
// fail happens in Start.
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// Start initializes all components, registers the tools, and serves the
// stdio transport until the client disconnects.
func (s *Server) Start() error {
	if err := s.initComponents(); err != nil {
		return err
	}

	s.mcpServer = server.NewMCPServer(
		"kitref",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)
	s.registerTools(s.mcpServer)

	s.logger.Info("MCP server starting on stdio",
		"contentDir", s.config.ContentDir,
		"templates", len(s.records))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the MCP server. The stdio transport ends
// when the client closes the stream, so there is nothing to tear down
// beyond logging.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	return nil
}

// initComponents builds the catalog, cache and template records. A
// missing or broken templates file disables recommendations but keeps
// the content tools serving.
func (s *Server) initComponents() error {
	cat, err := catalog.New(s.config.ContentDir, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open content catalog: %w", err)
	}
	s.catalog = cat
	s.cache = contentstore.NewCache(s.config.CacheTTL(), contentstore.DefaultMaxEntries, s.logger)

	records, profiles, err := cat.LoadTemplates()
	if err != nil {
		s.logger.Warn("Template records unavailable, recommendations disabled", "error", err)
		records, profiles = nil, nil
	}
	s.records = records
	s.profiles = profiles

	return nil
}

// serverInstructions tells the client how the catalog tools fit together.
const serverInstructions = `kitref serves a curated starter-kit catalog.

Use the list tools (list_components, list_patterns, list_libraries) to
discover what exists, then fetch individual items by name. get_full_docs
returns the complete reference document; prefer search_docs with a short
query to pull only the relevant excerpts.

To pick a starter template for a user, either call template_questionnaire
to get the questions to ask, or call recommend_template directly with
whatever preferences you already know. All content is read-only.`
