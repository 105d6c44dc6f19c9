package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/pipe"
	"github.com/liberioai/dossier/internal/ui"
	"github.com/liberioai/dossier/internal/workflows"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var raw bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a workflow",
		Long: `Show a workflow's metadata and body.

The body is rendered as markdown when stdout is a terminal. Use --raw to
print the document exactly as stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(opts, func(cfg config.Config) error {
				cat, err := openCatalog(cfg)
				if err != nil {
					return err
				}
				ref, err := cat.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if raw {
					data, err := cat.Raw(cmd.Context(), ref)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}

				doc, err := cat.Load(cmd.Context(), ref)
				if err != nil {
					return err
				}
				if jsonOutput {
					return outputWorkflowJSON(cmd.OutOrStdout(), ref, doc)
				}
				return outputWorkflowDetails(cmd.OutOrStdout(), ref, doc, !pipe.IsStdoutPiped())
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored document unmodified")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func outputWorkflowJSON(w io.Writer, ref workflows.Ref, doc *workflows.Document) error {
	out := struct {
		workflows.Ref
		Metadata map[string]any `json:"metadata"`
		Body     string         `json:"body"`
	}{ref, doc.Metadata, doc.Body}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func inputNames(specs []workflows.InputSpec) string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

// metadataRows lists the metadata worth showing above the body.
func metadataRows(ref workflows.Ref, doc *workflows.Document) [][2]string {
	rows := [][2]string{{"path", ref.Path}}
	for _, key := range []string{"version", "status", "objective"} {
		if v, err := doc.Str(key); err == nil && v != "" {
			rows = append(rows, [2]string{key, v})
		}
	}
	required, optional, err := doc.Inputs()
	if err != nil {
		rows = append(rows, [2]string{"inputs", "malformed: " + err.Error()})
		return rows
	}
	if len(required) > 0 {
		rows = append(rows, [2]string{"required", inputNames(required)})
	}
	if len(optional) > 0 {
		rows = append(rows, [2]string{"optional", inputNames(optional)})
	}
	return rows
}

func outputWorkflowDetails(w io.Writer, ref workflows.Ref, doc *workflows.Document, styled bool) error {
	if !styled {
		fmt.Fprintf(w, "%s\n\n", doc.Title(ref.Name))
		for _, row := range metadataRows(ref, doc) {
			fmt.Fprintf(w, "%s: %s\n", row[0], row[1])
		}
		fmt.Fprintf(w, "\n%s", doc.Body)
		return nil
	}

	width := pipe.TerminalWidth(100)
	p := ui.NewPrinter(w)
	p.Header(doc.Title(ref.Name))
	fmt.Fprintln(w, ui.KeyValueTable(metadataRows(ref, doc), ui.Clamp(width-20, 30, 80)))

	body, err := ui.RenderMarkdown(doc.Body, width)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Fprint(w, body)
	return nil
}
