package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/paths"
	"github.com/liberioai/dossier/internal/ui"
	"github.com/liberioai/dossier/internal/workflows"
)

func newValidateCmd() *cobra.Command {
	var schemaPath string
	var strict bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate workflow files against the JSON schema",
		Long: `Validate workflow frontmatter against the workflow JSON schema.

The schema is read from --schema, else workflows/workflow-schema.json under
$DOSSIER_ROOT or the current directory, else the built-in copy.
Exits 1 if any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadValidator(schemaPath, strict)
			if err != nil {
				return err
			}

			reports := make([]validationReport, len(args))
			failed := false
			for i, file := range args {
				errs := v.ValidateFile(file)
				reports[i] = validationReport{File: file, Valid: len(errs) == 0, Errors: errs}
				if len(errs) > 0 {
					failed = true
				}
			}

			if jsonOutput {
				if err := outputValidationJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				outputValidation(cmd.OutOrStdout(), reports)
			}

			if failed {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the JSON schema")
	cmd.Flags().BoolVar(&strict, "strict", false, "Also require version and schema_version to be semantic versions")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

type validationReport struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func loadValidator(schemaPath string, strict bool) (*workflows.Validator, error) {
	var opts []workflows.ValidatorOption
	if strict {
		opts = append(opts, workflows.WithStrictVersions())
	}

	if schemaPath == "" {
		schemaPath = paths.DefaultSchemaPath()
	}
	if schemaPath == "" {
		return workflows.NewValidator(workflows.DefaultSchema(), opts...)
	}
	v, err := workflows.LoadValidator(schemaPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("schema not usable: %w", err)
	}
	return v, nil
}

func outputValidationJSON(w io.Writer, reports []validationReport) error {
	for i := range reports {
		if reports[i].Errors == nil {
			reports[i].Errors = []string{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func outputValidation(w io.Writer, reports []validationReport) {
	p := ui.NewPrinter(w)
	for _, r := range reports {
		if r.Valid {
			p.Success("OK: " + r.File)
			continue
		}
		p.Error("FAIL: " + r.File)
		for _, e := range r.Errors {
			p.Detail(e)
		}
	}
}
