package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kitref/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "kitref" // application name used for config directory

// Size ceilings and cache defaults. Components, patterns and library docs
// are the small content class; the full reference document is the large one.
const (
	DefaultCacheTTLSeconds = 300             // 5 minute freshness window
	DefaultMaxAssetBytes   = 1 * 1024 * 1024 // components, patterns, library docs
	DefaultMaxDocBytes     = 5 * 1024 * 1024 // full reference document
)

// Config holds user configuration for kitref.
type Config struct {
	// ContentDir is the base directory holding the servable catalog:
	// components/, patterns/, libraries/, llms-full.txt and templates.json.
	ContentDir string `yaml:"content_dir"`

	// CatalogRepo is an optional Git remote the catalog can be synced from
	// with `kitref sync`. Empty means the catalog is managed by hand.
	CatalogRepo   string `yaml:"catalog_repo,omitempty"`
	CatalogBranch string `yaml:"catalog_branch,omitempty"`

	CacheTTLSeconds int   `yaml:"cache_ttl_seconds"`
	MaxAssetBytes   int64 `yaml:"max_asset_bytes"`
	MaxDocBytes     int64 `yaml:"max_doc_bytes"`

	Version  string `yaml:"version"`   // Track config version
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// CacheTTL returns the configured cache freshness window.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return DefaultCacheTTLSeconds * time.Second
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config paths", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location
// If no config exists, it returns an error indicating first run is needed
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found, first-time setup required")
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero-valued limits so hand-edited partial configs keep working.
func (c *Config) applyDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = DefaultContentDir()
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if c.MaxAssetBytes <= 0 {
		c.MaxAssetBytes = DefaultMaxAssetBytes
	}
	if c.MaxDocBytes <= 0 {
		c.MaxDocBytes = DefaultMaxDocBytes
	}
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	// Check primary location first
	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultContentDir returns the default catalog location in the user's data directory.
func DefaultContentDir() string {
	return filepath.Join(xdg.DataHome, APP_NAME, "catalog")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	path := DefaultContentDir()
	logging.Debug("Using default content directory", "path", path)

	return Config{
		ContentDir:      path,
		CacheTTLSeconds: DefaultCacheTTLSeconds,
		MaxAssetBytes:   DefaultMaxAssetBytes,
		MaxDocBytes:     DefaultMaxDocBytes,
		Version:         "1.0",
		InitTime:        0, // Will be set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
