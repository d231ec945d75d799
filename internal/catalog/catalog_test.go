package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kitref/internal/contentstore"
	"kitref/internal/logging"
	"kitref/pkg/pathsafe"
)

// newTestCatalog lays out a minimal catalog directory and returns a
// Catalog over it.
func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	base := t.TempDir()
	mustMkdir(t, filepath.Join(base, "components"))
	mustMkdir(t, filepath.Join(base, "patterns", "layout"))
	mustMkdir(t, filepath.Join(base, "patterns", "data"))
	mustMkdir(t, filepath.Join(base, "libraries"))

	mustWrite(t, filepath.Join(base, "components", "button.svelte"), "<button>ok</button>")
	mustWrite(t, filepath.Join(base, "components", "hero-section.svelte"), "<section/>")
	mustWrite(t, filepath.Join(base, "components", "notes.txt"), "not a component")

	mustWrite(t, filepath.Join(base, "patterns", "layout", "sidebar.md"),
		"---\ndescription: Collapsible sidebar layout\n---\n# Sidebar\n")
	mustWrite(t, filepath.Join(base, "patterns", "data", "infinite-scroll.md"),
		"# Infinite scroll\nNo frontmatter here.\n")

	mustWrite(t, filepath.Join(base, "libraries", "charts.md"),
		"---\ndescription: Chart library integration\n---\n# Charts\n")

	mustWrite(t, filepath.Join(base, "llms-full.txt"), "full reference document")
	mustWrite(t, filepath.Join(base, "templates.json"), `[
		{
			"id": "saas-dashboard",
			"name": "SaaS Dashboard Kit",
			"description": "Admin dashboard starter",
			"complexity": "advanced",
			"features": ["auth", "darkmode"],
			"matching": {
				"purpose": ["dashboard"],
				"colorPreference": ["professional"],
				"animations": ["subtle"],
				"features": ["auth", "darkmode"],
				"complexity": ["advanced"]
			}
		},
		{
			"id": "doc-only",
			"name": "Docs Only Kit",
			"description": "No profile on this one"
		}
	]`)

	logger, _ := logging.NewTestLogger()
	c, err := New(base, logger)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	return c
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNew_RequiresExistingDirectory(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	if _, err := New(filepath.Join(t.TempDir(), "nope"), logger); err == nil {
		t.Error("expected error for missing content directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	mustWrite(t, file, "x")
	if _, err := New(file, logger); err == nil {
		t.Error("expected error when content path is a file")
	}
}

func TestComponentPath(t *testing.T) {
	c := newTestCatalog(t)

	path, err := c.ComponentPath("button")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(c.BaseDir(), "components", "button.svelte")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}

func TestPatternPath(t *testing.T) {
	c := newTestCatalog(t)

	path, err := c.PatternPath("layout", "sidebar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(c.BaseDir(), "patterns", "layout", "sidebar.md")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}

func TestResolve_RejectsTraversal(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name string
		call func() (string, error)
	}{
		{"component double dot", func() (string, error) { return c.ComponentPath("..") }},
		{"component separator", func() (string, error) { return c.ComponentPath("a/b") }},
		{"component null byte", func() (string, error) { return c.ComponentPath("a\x00b") }},
		{"pattern category separator", func() (string, error) { return c.PatternPath("etc/passwd", "x") }},
		{"pattern name backslash", func() (string, error) { return c.PatternPath("layout", `..\win`) }},
		{"library empty", func() (string, error) { return c.LibraryPath("") }},
		{"library too long", func() (string, error) { return c.LibraryPath(strings.Repeat("a", 51)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			var vErr *pathsafe.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestListComponents(t *testing.T) {
	c := newTestCatalog(t)

	entries, err := c.ListComponents()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 components, got %d", len(entries))
	}
	// Sorted, extension stripped, .txt file ignored.
	if entries[0].Name != "button" || entries[1].Name != "hero-section" {
		t.Errorf("unexpected listing: %+v", entries)
	}
}

func TestListPatterns(t *testing.T) {
	c := newTestCatalog(t)

	entries, err := c.ListPatterns()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(entries))
	}

	// Sorted by category then name.
	if entries[0].Category != "data" || entries[0].Name != "infinite-scroll" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Description != "" {
		t.Errorf("pattern without frontmatter should have empty description, got %q", entries[0].Description)
	}
	if entries[1].Category != "layout" || entries[1].Description != "Collapsible sidebar layout" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestListLibraries(t *testing.T) {
	c := newTestCatalog(t)

	entries, err := c.ListLibraries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 library, got %d", len(entries))
	}
	if entries[0].Name != "charts" || entries[0].Description != "Chart library integration" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestList_MissingDirectoriesAreEmpty(t *testing.T) {
	base := t.TempDir()
	logger, _ := logging.NewTestLogger()
	c, err := New(base, logger)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}

	if entries, err := c.ListComponents(); err != nil || len(entries) != 0 {
		t.Errorf("expected empty component listing, got %v / %v", entries, err)
	}
	if entries, err := c.ListPatterns(); err != nil || len(entries) != 0 {
		t.Errorf("expected empty pattern listing, got %v / %v", entries, err)
	}
}

func TestLoadTemplates(t *testing.T) {
	c := newTestCatalog(t)

	records, profiles, err := c.LoadTemplates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}

	profile, ok := profiles["saas-dashboard"]
	if !ok {
		t.Fatal("expected profile for saas-dashboard")
	}
	if len(profile.Features) != 2 {
		t.Errorf("unexpected profile features: %v", profile.Features)
	}
	if _, ok := profiles["doc-only"]; ok {
		t.Error("record without embedded matching block must not get a profile")
	}
}

func TestLoadTemplates_MissingFile(t *testing.T) {
	base := t.TempDir()
	logger, _ := logging.NewTestLogger()
	c, err := New(base, logger)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}

	_, _, err = c.LoadTemplates()
	if !errors.Is(err, contentstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadTemplates_InvalidJSON(t *testing.T) {
	base := t.TempDir()
	mustWrite(t, filepath.Join(base, "templates.json"), "{not json")
	logger, _ := logging.NewTestLogger()
	c, err := New(base, logger)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}

	if _, _, err := c.LoadTemplates(); err == nil {
		t.Error("expected parse error for invalid JSON")
	}
}
