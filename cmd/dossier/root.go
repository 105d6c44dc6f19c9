package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/catalog"
	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/db"
	"github.com/liberioai/dossier/internal/history"
	"github.com/liberioai/dossier/internal/logger"
	"github.com/liberioai/dossier/internal/paths"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	cfgPath  string
	logLevel string
	localDir string
	envFile  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dossier",
		Short: "Serve .ds.md workflows as MCP tools",
		Long: `Dossier exposes a catalog of .ds.md workflow documents as tools over the
Model Context Protocol.

Workflows are discovered under the configured root of a GitHub repository,
a local directory, or an S3 bucket. Each one becomes a tool whose input
schema comes from the workflow's frontmatter.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgPath, "config", paths.ConfigFile(), "path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment variables (e.g. GITHUB_TOKEN) from this file")
	cmd.PersistentFlags().StringVar(&opts.localDir, "local", "", "read workflows from this directory instead of the configured source")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newInvokeCmd(opts))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newReadmeCmd())
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newCredentialsCmd())

	return cmd
}

func withConfig(opts *rootOptions, fn func(config.Config) error) error {
	if opts.envFile != "" {
		// Variables already set in the environment are kept.
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return err
	}
	if opts.localDir != "" {
		cfg.Source.Kind = config.SourceLocal
		cfg.Source.Local.Dir = opts.localDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	return fn(cfg)
}

func openCatalog(cfg config.Config) (*catalog.Catalog, error) {
	store, err := cfg.NewStore()
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", cfg.Source.Kind, err)
	}
	return catalog.New(store, catalog.WithRoot(cfg.Source.Root)), nil
}

// openHistory connects to the history database. The returned func closes it.
func openHistory(ctx context.Context, cfg config.Config) (*history.Service, func() error, error) {
	conn, queries, err := db.ConnectWithQueries(ctx, cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to history database: %w", err)
	}
	return history.NewService(queries), conn.Close, nil
}
