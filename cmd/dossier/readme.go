package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/paths"
	"github.com/liberioai/dossier/internal/readme"
	"github.com/liberioai/dossier/internal/ui"
)

func newReadmeCmd() *cobra.Command {
	var dir string
	var check bool

	cmd := &cobra.Command{
		Use:   "readme",
		Short: "Regenerate workflow README indexes",
		Long: `Regenerate README.md in every workflow category directory and the
workflows root index.

With --check nothing is written; out-of-sync files are listed and the
command exits 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = defaultWorkflowsDir()
			}

			res, err := readme.Generate(dir, check)
			if err != nil {
				return fmt.Errorf("generate readmes: %w", err)
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			if check {
				if len(res.OutOfSync) > 0 {
					p.Error("READMEs out of sync:")
					for _, path := range res.OutOfSync {
						p.Detail(path)
					}
					p.Blank()
					p.Info("Run:")
					p.Code("dossier readme --dir " + dir)
					return errReported
				}
				p.Success("All READMEs are in sync")
				return nil
			}

			for _, path := range res.Updated {
				p.SuccessPath("Updated", path)
			}
			p.Success("All READMEs are up to date")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Workflows directory (default: workflows/ under $DOSSIER_ROOT or the current directory)")
	cmd.Flags().BoolVar(&check, "check", false, "Report out-of-sync READMEs without writing")

	return cmd
}

// defaultWorkflowsDir is the directory holding the default schema, else ./workflows.
func defaultWorkflowsDir() string {
	if schema := paths.DefaultSchemaPath(); schema != "" {
		return filepath.Dir(schema)
	}
	return "workflows"
}
