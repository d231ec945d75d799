// Package main is the entry point for the kitref CLI.
//
// The default subcommand starts the MCP server over stdio; the remaining
// subcommands are operator tooling for inspecting and maintaining the
// local catalog. Startup follows this sequence:
//
// 1. Initialize logging
// 2. Write a default configuration on first run
// 3. Load user configuration from disk
// 4. Run the selected subcommand
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"kitref/internal/catalog"
	"kitref/internal/catalogsync"
	"kitref/internal/config"
	"kitref/internal/contentstore"
	"kitref/internal/logging"
	"kitref/internal/mcp"
	"kitref/internal/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	logger := logging.NewAppLogger()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *logging.AppLogger) *cobra.Command {
	root := &cobra.Command{
		Use:     "kitref",
		Short:   "Starter-kit catalog server for AI coding assistants",
		Long:    "kitref serves a read-only catalog of starter-kit components, patterns and library docs over the Model Context Protocol.",
		Version: mcp.Version,
		// Running kitref with no subcommand starts the server, which is
		// what MCP client configs invoke.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logger)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(logger),
		newCatalogCmd(logger),
		newPreviewCmd(logger),
		newSyncCmd(logger),
		newAuthCmd(),
		newConfigCmd(),
	)
	return root
}

// loadConfig loads the configuration, writing defaults on first run so
// the server can start before any catalog exists.
func loadConfig(logger *logging.AppLogger) (*config.Config, error) {
	if config.IsFirstRun() {
		logger.Info("First run, writing default configuration")
		cfg := config.DefaultConfig()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}
	return config.Load()
}

func newServeCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logger)
		},
	}
}

func runServe(logger *logging.AppLogger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	// The catalog directory must exist even when empty, so a fresh
	// install can start and report empty listings instead of dying.
	if err := os.MkdirAll(cfg.ContentDir, 0755); err != nil {
		return fmt.Errorf("failed to create content directory: %w", err)
	}

	server := mcp.NewServer(cfg, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func newCatalogCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the catalog contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}

			cat, err := catalog.New(cfg.ContentDir, logger)
			if err != nil {
				return err
			}

			components, err := cat.ListComponents()
			if err != nil {
				return err
			}
			patterns, err := cat.ListPatterns()
			if err != nil {
				return err
			}
			libraries, err := cat.ListLibraries()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), ui.RenderListing(ui.Listing{
				Components: components,
				Patterns:   patterns,
				Libraries:  libraries,
			}))
			return nil
		},
	}
}

func newPreviewCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <component|pattern|library> <name>",
		Short: "Preview one catalog item in the terminal",
		Long:  "Preview renders a catalog item. Patterns are addressed as category/name, for example `kitref preview pattern layout/sidebar`.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}

			cat, err := catalog.New(cfg.ContentDir, logger)
			if err != nil {
				return err
			}

			class, name := args[0], args[1]
			var path string
			markdown := false

			switch class {
			case "component":
				path, err = cat.ComponentPath(name)
			case "pattern":
				category, item, ok := strings.Cut(name, "/")
				if !ok {
					return fmt.Errorf("patterns are addressed as category/name")
				}
				path, err = cat.PatternPath(category, item)
				markdown = true
			case "library":
				path, err = cat.LibraryPath(name)
				markdown = true
			default:
				return fmt.Errorf("unknown item class %q, expected component, pattern or library", class)
			}
			if err != nil {
				return err
			}

			content, err := contentstore.ReadFile(context.Background(), path, cfg.MaxAssetBytes)
			if err != nil {
				return err
			}

			out := string(content)
			if markdown {
				out = ui.RenderMarkdown(out, terminalWidth())
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// terminalWidth returns the current terminal width, or 0 when stdout is
// not a terminal so the renderer falls back to its default.
func terminalWidth() int {
	width, _, err := term.GetSize(int(syscall.Stdout))
	if err != nil {
		return 0
	}
	return width
}

func newSyncCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Clone or refresh the catalog from its configured Git remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}

			source := catalogsync.NewSource(cfg.CatalogRepo, cfg.CatalogBranch, cfg.ContentDir)
			if err := source.Sync(logger); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Catalog is up to date"))
			return nil
		},
	}
}

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage the catalog access token in the OS keyring",
	}

	auth.AddCommand(
		&cobra.Command{
			Use:   "set",
			Short: "Store a personal access token for private catalog remotes",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprint(cmd.OutOrStdout(), "Token: ")
				token, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				if err := catalogsync.NewCredentialManager().StoreToken(string(token)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Token stored"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored token",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := catalogsync.NewCredentialManager().DeleteToken(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Token removed"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether a token is stored",
			RunE: func(cmd *cobra.Command, args []string) error {
				if catalogsync.NewCredentialManager().HasToken() {
					fmt.Fprintln(cmd.OutOrStdout(), "A catalog token is stored.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No catalog token stored.")
				}
				return nil
			},
		},
	)
	return auth
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the kitref configuration",
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cfgCmd
}
