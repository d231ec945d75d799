package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"kitref/internal/catalog"
	"kitref/internal/contentstore"
	"kitref/internal/recommend"
	"kitref/pkg/pathsafe"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Search input bounds per the search_docs contract.
const (
	minQueryLength     = 2
	maxQueryLength     = 100
	defaultSearchLimit = 5
	maxSearchLimit     = 20

	recommendTopN = 3
)

// registerTools attaches every catalog tool to the MCP server.
func (s *Server) registerTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("get_component",
		mcp.WithDescription("Fetch the source of a starter-kit component by name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component name, e.g. \"button\" or \"hero-section\".")),
	), s.handleGetComponent)

	m.AddTool(mcp.NewTool("get_pattern",
		mcp.WithDescription("Fetch a pattern write-up by category and name."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Pattern category, e.g. \"layout\".")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Pattern name within the category.")),
	), s.handleGetPattern)

	m.AddTool(mcp.NewTool("get_library_docs",
		mcp.WithDescription("Fetch the integration document for a library by name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Library name, e.g. \"charts\".")),
	), s.handleGetLibraryDocs)

	m.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List all available component names."),
	), s.handleListComponents)

	m.AddTool(mcp.NewTool("list_patterns",
		mcp.WithDescription("List all available patterns grouped by category."),
	), s.handleListPatterns)

	m.AddTool(mcp.NewTool("list_libraries",
		mcp.WithDescription("List all libraries with integration docs."),
	), s.handleListLibraries)

	m.AddTool(mcp.NewTool("get_full_docs",
		mcp.WithDescription("Fetch the complete reference document. Large; prefer search_docs for targeted lookups."),
	), s.handleGetFullDocs)

	m.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Search the reference document and return matching excerpts with surrounding context."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term, 2-100 characters, matched case-insensitively.")),
		mcp.WithNumber("limit", mcp.Description("Maximum excerpts to return (1-20, default 5).")),
	), s.handleSearchDocs)

	m.AddTool(mcp.NewTool("recommend_template",
		mcp.WithDescription("Recommend starter templates ranked against the stated preferences. All fields optional."),
		mcp.WithString("purpose", mcp.Description("Project purpose, e.g. \"dashboard\", \"landing\", \"ecommerce\".")),
		mcp.WithString("color_preference", mcp.Description("Preferred look, e.g. \"professional\", \"vibrant\", \"dark\".")),
		mcp.WithString("animations", mcp.Description("Desired animation style, e.g. \"subtle\", \"playful\", \"none\".")),
		mcp.WithArray("features", mcp.Description("Required features, e.g. [\"auth\", \"darkmode\"]."), mcp.WithStringItems()),
		mcp.WithString("complexity", mcp.Description("Target complexity, e.g. \"simple\", \"intermediate\", \"advanced\".")),
	), s.handleRecommendTemplate)

	m.AddTool(mcp.NewTool("template_questionnaire",
		mcp.WithDescription("Get the questions to ask a user before calling recommend_template."),
	), s.handleQuestionnaire)
}

// --- fetch-by-identifier tools ---

func (s *Server) handleGetComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("component name is required"), nil
	}

	path, err := s.catalog.ComponentPath(name)
	if err != nil {
		return s.failure(err, "component", "list_components"), nil
	}

	content, err := s.cache.Get(ctx, path, s.config.MaxAssetBytes)
	if err != nil {
		return s.failure(err, "component", "list_components"), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) handleGetPattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("pattern category is required"), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("pattern name is required"), nil
	}

	path, err := s.catalog.PatternPath(category, name)
	if err != nil {
		return s.failure(err, "pattern", "list_patterns"), nil
	}

	content, err := s.cache.Get(ctx, path, s.config.MaxAssetBytes)
	if err != nil {
		return s.failure(err, "pattern", "list_patterns"), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) handleGetLibraryDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("library name is required"), nil
	}

	path, err := s.catalog.LibraryPath(name)
	if err != nil {
		return s.failure(err, "library", "list_libraries"), nil
	}

	content, err := s.cache.Get(ctx, path, s.config.MaxAssetBytes)
	if err != nil {
		return s.failure(err, "library", "list_libraries"), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

// --- list tools ---

func (s *Server) handleListComponents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.catalog.ListComponents()
	if err != nil {
		return s.failure(err, "component", ""), nil
	}
	return mcp.NewToolResultText(formatListing("Components", entries, "get_component")), nil
}

func (s *Server) handleListPatterns(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.catalog.ListPatterns()
	if err != nil {
		return s.failure(err, "pattern", ""), nil
	}
	return mcp.NewToolResultText(formatListing("Patterns", entries, "get_pattern")), nil
}

func (s *Server) handleListLibraries(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.catalog.ListLibraries()
	if err != nil {
		return s.failure(err, "library", ""), nil
	}
	return mcp.NewToolResultText(formatListing("Libraries", entries, "get_library_docs")), nil
}

// --- full document and search ---

func (s *Server) handleGetFullDocs(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := s.cache.Get(ctx, s.catalog.FullDocPath(), s.config.MaxDocBytes)
	if err != nil {
		return s.failure(err, "reference document", ""), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) handleSearchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("search query is required"), nil
	}
	if msg := validateQuery(query); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}

	limit := req.GetInt("limit", defaultSearchLimit)
	if limit < 1 || limit > maxSearchLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", maxSearchLimit)), nil
	}

	content, err := s.cache.Get(ctx, s.catalog.FullDocPath(), s.config.MaxDocBytes)
	if err != nil {
		return s.failure(err, "reference document", ""), nil
	}

	excerpts := contentstore.SearchExcerpts(string(content), query, limit)
	if len(excerpts) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results for %q in the reference document.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q:\n", len(excerpts), query)
	for i, ex := range excerpts {
		fmt.Fprintf(&b, "\n--- Result %d (line %d) ---\n%s\n", i+1, ex.Line, ex.Text)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// --- recommendation tools ---

func (s *Server) handleRecommendTemplate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if len(s.records) == 0 {
		return mcp.NewToolResultError("template records are not available on this server"), nil
	}

	criteria := recommend.Criteria{
		Purpose:         strings.TrimSpace(req.GetString("purpose", "")),
		ColorPreference: strings.TrimSpace(req.GetString("color_preference", "")),
		Animations:      strings.TrimSpace(req.GetString("animations", "")),
		Features:        req.GetStringSlice("features", nil),
		Complexity:      strings.TrimSpace(req.GetString("complexity", "")),
	}

	if criteria.IsEmpty() {
		return mcp.NewToolResultText("No preferences given. Call template_questionnaire for the questions to ask, then call recommend_template with the answers."), nil
	}

	results := recommend.Score(s.records, s.profiles, criteria)
	if len(results) == 0 {
		return mcp.NewToolResultText("No template matched the given preferences. Try relaxing a criterion, or call list_components to browse the catalog directly."), nil
	}
	if len(results) > recommendTopN {
		results = results[:recommendTopN]
	}

	var b strings.Builder
	b.WriteString("Recommended templates:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s (match %d/100)\n", i+1, r.Record.Name, r.Score)
		if r.Record.Description != "" {
			fmt.Fprintf(&b, "   %s\n", r.Record.Description)
		}
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "   - %s\n", reason)
		}
		if r.Record.RecommendedLibraries != "" {
			fmt.Fprintf(&b, "   Libraries: %s\n", r.Record.RecommendedLibraries)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleQuestionnaire(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(questionnaire), nil
}

// questionnaire maps one question to each recommend_template field.
const questionnaire = `Ask the user these questions, then call recommend_template with the answers:

1. purpose — What are you building? (e.g. dashboard, landing, blog, ecommerce)
2. color_preference — What look do you want? (e.g. professional, vibrant, dark, minimal)
3. animations — How much motion? (e.g. none, subtle, playful)
4. features — Which features do you need? (e.g. auth, darkmode, charts, billing, seo)
5. complexity — How ambitious is the build? (simple, intermediate, advanced)

Every field is optional; pass whatever the user answered.`

// --- shared helpers ---

// failure maps internal errors to caller-facing tool results. Validation
// failures state the violated rule; a missing file names the companion
// list tool; anything else is logged and surfaced as a generic message
// with no path or system detail.
func (s *Server) failure(err error, kind, listTool string) *mcp.CallToolResult {
	var vErr *pathsafe.ValidationError
	if errors.As(err, &vErr) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid %s name: %s", kind, vErr.Message))
	}

	if errors.Is(err, contentstore.ErrNotFound) {
		msg := fmt.Sprintf("%s not found", kind)
		if listTool != "" {
			msg += fmt.Sprintf(" - use %s to see what is available", listTool)
		}
		return mcp.NewToolResultError(msg)
	}

	if errors.Is(err, contentstore.ErrTooLarge) {
		return mcp.NewToolResultError(fmt.Sprintf("%s exceeds the configured size limit", kind))
	}

	s.logger.Error("Tool request failed", "kind", kind, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("internal error while reading %s content", kind))
}

// validateQuery enforces the search_docs input contract. Returns a
// caller-facing message, or "" when the query is acceptable. Length is
// measured in runes so multibyte queries are not penalized.
func validateQuery(query string) string {
	if n := utf8.RuneCountInString(query); n < minQueryLength || n > maxQueryLength {
		return fmt.Sprintf("query must be between %d and %d characters", minQueryLength, maxQueryLength)
	}
	for _, r := range query {
		if unicode.IsControl(r) {
			return "query must not contain control characters"
		}
	}
	return ""
}

// formatListing renders catalog entries as a text listing that names the
// fetch tool to use next.
func formatListing(title string, entries []catalog.Entry, fetchTool string) string {
	if len(entries) == 0 {
		return fmt.Sprintf("%s: none available.", title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", title, len(entries))
	for _, e := range entries {
		b.WriteString("- ")
		if e.Category != "" {
			b.WriteString(e.Category + "/")
		}
		b.WriteString(e.Name)
		if e.Description != "" {
			b.WriteString(": " + e.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nFetch one with %s.", fetchTool)
	return b.String()
}
