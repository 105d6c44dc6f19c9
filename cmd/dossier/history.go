package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/history"
	"github.com/liberioai/dossier/internal/ui"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var workflow string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded workflow invocations",
		Long: `Show recorded workflow invocations, newest first.

Invocations are recorded when history.enabled is set in the config file.

Filter by:
  --workflow <name>  Show invocations of one workflow
  --limit <n>        Limit number of results (default 50)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(opts, func(cfg config.Config) error {
				svc, closeDB, err := openHistory(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeDB()

				invocations, err := svc.List(cmd.Context(), history.Filter{
					Workflow: workflow,
					Limit:    int64(limit),
				})
				if err != nil {
					return fmt.Errorf("list history: %w", err)
				}

				if jsonOutput {
					return outputHistoryJSON(cmd.OutOrStdout(), invocations)
				}
				if len(invocations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No invocations recorded.")
					if !cfg.History.Enabled {
						fmt.Fprintln(cmd.OutOrStdout(), "\nEnable recording with history.enabled: true in "+opts.cfgPath)
					}
					return nil
				}
				outputHistoryTable(cmd.OutOrStdout(), invocations)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&workflow, "workflow", "", "Filter by workflow name")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of invocations")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCmd(opts))
	cmd.AddCommand(newHistoryPruneCmd(opts))

	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one invocation by ID or ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(opts, func(cfg config.Config) error {
				svc, closeDB, err := openHistory(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeDB()

				inv, err := svc.Get(cmd.Context(), args[0])
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("invocation not found: %s", args[0])
				}
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(inv)
			})
		},
	}
}

func newHistoryPruneCmd(opts *rootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(opts, func(cfg config.Config) error {
				svc, closeDB, err := openHistory(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeDB()

				n, err := svc.Prune(cmd.Context(), olderThan)
				if err != nil {
					return fmt.Errorf("prune history: %w", err)
				}
				ui.NewPrinter(cmd.OutOrStdout()).Success(fmt.Sprintf("Removed %d invocation(s) older than %s", n, olderThan))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold")

	return cmd
}

func outputHistoryJSON(w io.Writer, invocations []*history.Invocation) error {
	if invocations == nil {
		invocations = []*history.Invocation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(invocations)
}

func outputHistoryTable(w io.Writer, invocations []*history.Invocation) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary)
	idStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorSecondary)
	okStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorTertiary)

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
		headerStyle.Render(ui.PadRight("ID", 8)),
		headerStyle.Render(ui.PadRight("WORKFLOW", 24)),
		headerStyle.Render(ui.PadRight("STATUS", 10)),
		headerStyle.Render(ui.PadRight("SOURCE", 6)),
		headerStyle.Render(ui.PadRight("STARTED", 19)),
		headerStyle.Render("DURATION"),
	)

	for _, inv := range invocations {
		status := string(inv.Status)
		switch inv.Status {
		case history.StatusOK:
			status = okStyle.Render(ui.PadRight(status, 10))
		case history.StatusNotFound:
			status = warnStyle.Render(ui.PadRight(status, 10))
		default:
			status = errStyle.Render(ui.PadRight(status, 10))
		}

		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
			idStyle.Render(shortID(inv.ID)),
			nameStyle.Render(ui.PadRight(ui.Truncate(inv.Workflow, 24), 24)),
			status,
			ui.PadRight(string(inv.Source), 6),
			inv.StartedAt.Local().Format("2006-01-02 15:04:05"),
			inv.Duration.Round(time.Millisecond),
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
