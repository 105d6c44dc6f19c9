package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/catalog"
	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/ui"
	"github.com/liberioai/dossier/internal/workflows"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	var match string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workflow tools",
		Long: `List the tools the MCP server would advertise.

Workflows whose documents cannot be fetched or whose frontmatter is
malformed are reported as skipped.

Examples:
  dossier list
  dossier list --match 'deploy-*'
  dossier list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(opts, func(cfg config.Config) error {
				var g glob.Glob
				if match != "" {
					var err error
					if g, err = glob.Compile(match); err != nil {
						return fmt.Errorf("invalid --match pattern: %w", err)
					}
				}

				cat, err := openCatalog(cfg)
				if err != nil {
					return err
				}
				results, err := cat.Describe(cmd.Context())
				if err != nil {
					return err
				}
				results = filterResults(results, g)

				if jsonOutput {
					return outputToolsJSON(cmd.OutOrStdout(), results)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No workflows found.")
					return nil
				}
				outputToolsTable(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&match, "match", "", "Only list workflows whose name matches this glob")

	return cmd
}

func filterResults(results []catalog.ToolResult, g glob.Glob) []catalog.ToolResult {
	if g == nil {
		return results
	}
	var out []catalog.ToolResult
	for _, r := range results {
		if g.Match(r.Ref.Name) {
			out = append(out, r)
		}
	}
	return out
}

type skippedJSON struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

type toolsJSON struct {
	Tools   []workflows.Descriptor `json:"tools"`
	Skipped []skippedJSON          `json:"skipped,omitempty"`
}

func outputToolsJSON(w io.Writer, results []catalog.ToolResult) error {
	out := toolsJSON{Tools: []workflows.Descriptor{}}
	for _, r := range results {
		if r.Descriptor != nil {
			out.Tools = append(out.Tools, *r.Descriptor)
			continue
		}
		out.Skipped = append(out.Skipped, skippedJSON{
			Name:   r.Ref.Name,
			Path:   r.Ref.Path,
			Reason: string(r.Skipped.Kind),
			Error:  r.Skipped.Err.Error(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputToolsTable(w io.Writer, results []catalog.ToolResult) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary)
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorSecondary).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	descStyle := lipgloss.NewStyle().Foreground(ui.ColorText)

	nameWidth := 20
	for _, r := range results {
		if len(r.Ref.Name) > nameWidth {
			nameWidth = len(r.Ref.Name)
		}
	}
	nameWidth = min(nameWidth, 36)
	inputWidth := 8

	fmt.Fprintf(w, "%s  %s  %s\n",
		headerStyle.Render(ui.PadRight("NAME", nameWidth)),
		headerStyle.Render(ui.PadRight("INPUTS", inputWidth)),
		headerStyle.Render("DESCRIPTION"),
	)

	var skipped []catalog.ToolResult
	for _, r := range results {
		if r.Descriptor == nil {
			skipped = append(skipped, r)
			continue
		}
		d := r.Descriptor
		inputs := fmt.Sprintf("%d/%d", len(d.InputSchema.Required), len(d.InputSchema.Properties))
		fmt.Fprintf(w, "%s  %s  %s\n",
			nameStyle.Render(ui.PadRight(ui.Truncate(d.Name, nameWidth), nameWidth)),
			countStyle.Render(ui.PadRight(inputs, inputWidth)),
			descStyle.Render(ui.Truncate(d.Description, 60)),
		)
	}

	if len(skipped) == 0 {
		return
	}
	fmt.Fprintln(w)
	p := ui.NewPrinter(w)
	for _, r := range skipped {
		p.Warning(fmt.Sprintf("%s skipped (%s)", r.Ref.Name, r.Skipped.Kind))
		p.Detail(r.Skipped.Err.Error())
	}
}
