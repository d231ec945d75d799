// Package catalog maps sanitized identifiers to files in the content
// directory and enumerates what is servable. The catalog layout is fixed:
//
//	components/<id>.svelte   component sources
//	patterns/<category>/<id>.md   pattern write-ups, nested one level
//	libraries/<id>.md        library integration docs
//	llms-full.txt            the large full-reference document
//	templates.json           template records with matching profiles
//
// Every path handed out is built from a sanitized identifier and then
// re-checked against the base directory, so nothing upstream of the
// reader can escape the catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kitref/internal/contentstore"
	"kitref/internal/logging"
	"kitref/internal/recommend"
	"kitref/pkg/pathsafe"

	"github.com/adrg/frontmatter"
)

const (
	componentsDir = "components"
	patternsDir   = "patterns"
	librariesDir  = "libraries"
	fullDocFile   = "llms-full.txt"
	templatesFile = "templates.json"

	componentExt = ".svelte"
	documentExt  = ".md"
)

// docFrontmatter is the YAML frontmatter expected at the top of pattern
// and library documents. Only description is used; documents without
// frontmatter are still servable, just listed without a description.
type docFrontmatter struct {
	Description string `yaml:"description"`
}

// Entry is one listable catalog item.
type Entry struct {
	Name        string
	Category    string // set for patterns only
	Description string
}

// Catalog resolves identifiers against a single base content directory.
type Catalog struct {
	baseDir string
	logger  *logging.AppLogger
}

// New creates a catalog rooted at baseDir. The directory must exist.
func New(baseDir string, logger *logging.AppLogger) (*Catalog, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve content directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path is not a directory: %s", abs)
	}

	return &Catalog{baseDir: abs, logger: logger}, nil
}

// BaseDir returns the absolute catalog root.
func (c *Catalog) BaseDir() string {
	return c.baseDir
}

// ComponentPath resolves a component identifier to its source file.
func (c *Catalog) ComponentPath(name string) (string, error) {
	return c.resolve(componentsDir, "", name, componentExt)
}

// PatternPath resolves a category and pattern identifier to its document.
// The category is sanitized with the same rules as the identifier.
func (c *Catalog) PatternPath(category, name string) (string, error) {
	safeCategory, err := pathsafe.SanitizeIdentifier(category, pathsafe.DefaultMaxIdentifierLength)
	if err != nil {
		return "", err
	}
	return c.resolve(patternsDir, safeCategory, name, documentExt)
}

// LibraryPath resolves a library identifier to its integration document.
func (c *Catalog) LibraryPath(name string) (string, error) {
	return c.resolve(librariesDir, "", name, documentExt)
}

// FullDocPath returns the fixed path of the full reference document.
func (c *Catalog) FullDocPath() string {
	return filepath.Join(c.baseDir, fullDocFile)
}

// TemplatesPath returns the fixed path of the template records file.
func (c *Catalog) TemplatesPath() string {
	return filepath.Join(c.baseDir, templatesFile)
}

// resolve sanitizes name, joins it under class (and optional sub
// directory) with ext, and confirms the result stays inside the base
// directory. A boundary escape is reported as a validation failure; the
// resolved path is never echoed.
func (c *Catalog) resolve(class, sub, name, ext string) (string, error) {
	safe, err := pathsafe.SanitizeIdentifier(name, pathsafe.DefaultMaxIdentifierLength)
	if err != nil {
		return "", err
	}

	parts := []string{c.baseDir, class}
	if sub != "" {
		parts = append(parts, sub)
	}
	parts = append(parts, safe+ext)
	candidate := filepath.Join(parts...)

	if !pathsafe.IsWithinBase(candidate, c.baseDir) {
		c.logger.Warn("Resolved path escaped content directory", "class", class)
		return "", &pathsafe.ValidationError{
			Kind:    pathsafe.KindTraversalAttempt,
			Message: "identifier resolves outside the content directory",
		}
	}

	return candidate, nil
}

// ListComponents enumerates component sources by extension. Component
// files carry no frontmatter, so entries have names only.
func (c *Catalog) ListComponents() ([]Entry, error) {
	dir := filepath.Join(c.baseDir, componentsDir)
	names, err := listByExtension(dir, componentExt)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{Name: name})
	}
	return entries, nil
}

// ListPatterns enumerates pattern documents, one category level deep,
// with frontmatter descriptions when present.
func (c *Catalog) ListPatterns() ([]Entry, error) {
	root := filepath.Join(c.baseDir, patternsDir)
	categories, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read patterns directory: %w", err)
	}

	var entries []Entry
	for _, cat := range categories {
		if !cat.IsDir() {
			continue
		}
		dir := filepath.Join(root, cat.Name())
		names, err := listByExtension(dir, documentExt)
		if err != nil {
			c.logger.Warn("Skipping unreadable pattern category", "category", cat.Name(), "error", err)
			continue
		}
		for _, name := range names {
			entries = append(entries, Entry{
				Name:        name,
				Category:    cat.Name(),
				Description: c.readDescription(filepath.Join(dir, name+documentExt)),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// ListLibraries enumerates library documents with frontmatter
// descriptions when present.
func (c *Catalog) ListLibraries() ([]Entry, error) {
	dir := filepath.Join(c.baseDir, librariesDir)
	names, err := listByExtension(dir, documentExt)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{
			Name:        name,
			Description: c.readDescription(filepath.Join(dir, name+documentExt)),
		})
	}
	return entries, nil
}

// readDescription parses the frontmatter description of a document.
// Failures are listing cosmetics, not errors: the entry just has no
// description.
func (c *Catalog) readDescription(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var matter docFrontmatter
	if _, err := frontmatter.Parse(bytes.NewReader(content), &matter); err != nil {
		return ""
	}
	return strings.TrimSpace(matter.Description)
}

// LoadTemplates reads the static template records file and splits out the
// matching profiles keyed by record id. The file is a single JSON array;
// records missing an embedded profile are kept (they are servable as
// documentation) but will never be scored.
func (c *Catalog) LoadTemplates() ([]recommend.TemplateRecord, map[string]recommend.MatchingProfile, error) {
	data, err := contentstore.ReadFile(context.Background(), c.TemplatesPath(), 0)
	if err != nil {
		return nil, nil, err
	}

	var records []recommend.TemplateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse template records: %w", err)
	}

	profiles := make(map[string]recommend.MatchingProfile, len(records))
	for _, r := range records {
		if r.ID == "" {
			return nil, nil, fmt.Errorf("template record %q has no id", r.Name)
		}
		if r.Matching != nil {
			profiles[r.ID] = *r.Matching
		}
	}

	c.logger.Debug("Template records loaded", "records", len(records), "profiles", len(profiles))
	return records, profiles, nil
}

// listByExtension returns sorted base names (extension stripped) of
// regular files in dir carrying ext. A missing directory lists as empty.
func listByExtension(dir, ext string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(d.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}
