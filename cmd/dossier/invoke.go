package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/catalog"
	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/history"
	"github.com/liberioai/dossier/internal/logger"
	"github.com/liberioai/dossier/internal/pipe"
	"github.com/liberioai/dossier/internal/workflows"
)

func newInvokeCmd(opts *rootOptions) *cobra.Command {
	var argFlags []string
	var argsJSON string
	var noPrompt bool

	cmd := &cobra.Command{
		Use:   "invoke <name>",
		Short: "Print a workflow's invocation text",
		Long: `Print the text an MCP client receives when it calls a workflow tool.

Arguments come from --args-json (a file, or - for stdin) and --arg k=v
flags; flags win on conflicts. When attached to a terminal, missing
required inputs are prompted for.

Examples:
  dossier invoke deploy --arg service=api --arg env=prod
  echo '{"service":"api"}' | dossier invoke deploy --args-json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withConfig(opts, func(cfg config.Config) error {
				values, err := loadArgsJSON(argsJSON)
				if err != nil {
					return err
				}
				if err := parseArgFlags(argFlags, values); err != nil {
					return err
				}

				cat, err := openCatalog(cfg)
				if err != nil {
					return err
				}

				if !noPrompt && pipe.IsInteractive() {
					if err := promptMissing(cmd, cat, name, values); err != nil {
						return err
					}
				}

				invokeArgs := catalog.ArgumentsFromMap(values)
				started := time.Now()
				text, invokeErr := cat.Invoke(cmd.Context(), name, invokeArgs)

				if cfg.History.Enabled {
					recordInvocation(cmd, cfg, name, invokeArgs, started, invokeErr)
				}
				if invokeErr != nil {
					return invokeErr
				}

				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&argFlags, "arg", nil, "Argument as key=value (repeatable)")
	cmd.Flags().StringVar(&argsJSON, "args-json", "", "JSON object of arguments from a file, or - for stdin")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Never prompt for missing required inputs")

	return cmd
}

// parseArgFlags adds key=value pairs to values. Values are kept as strings.
func parseArgFlags(flags []string, values map[string]any) error {
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return fmt.Errorf("invalid --arg %q: want key=value", f)
		}
		values[k] = v
	}
	return nil
}

// loadArgsJSON reads a JSON object from path, or from stdin when path is "-".
func loadArgsJSON(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	var data []byte
	var err error
	if path == "-" {
		var s string
		s, err = pipe.ReadStdin()
		data = []byte(s)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read --args-json: %w", err)
	}
	return decodeArgs(bytes.NewReader(data))
}

func decodeArgs(r io.Reader) (map[string]any, error) {
	values := map[string]any{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		return nil, fmt.Errorf("parse --args-json: %w", err)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// promptMissing asks for required inputs that have no value yet.
func promptMissing(cmd *cobra.Command, cat *catalog.Catalog, name string, values map[string]any) error {
	ref, err := cat.Lookup(cmd.Context(), name)
	if err != nil {
		// Invoke reports the error.
		return nil
	}
	doc, err := cat.Load(cmd.Context(), ref)
	if err != nil {
		return nil
	}
	required, _, err := doc.Inputs()
	if err != nil {
		return nil
	}

	missing := missingInputs(required, values)
	if len(missing) == 0 {
		return nil
	}

	answers := make([]string, len(missing))
	fields := make([]huh.Field, len(missing))
	for i, in := range missing {
		fields[i] = huh.NewInput().
			Title(in.Name).
			Description(in.Description).
			Value(&answers[i])
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm()).Run(); err != nil {
		return err
	}
	for i, in := range missing {
		values[in.Name] = answers[i]
	}
	return nil
}

func missingInputs(required []workflows.InputSpec, values map[string]any) []workflows.InputSpec {
	var missing []workflows.InputSpec
	for _, in := range required {
		if _, ok := values[in.Name]; !ok {
			missing = append(missing, in)
		}
	}
	return missing
}

func recordInvocation(cmd *cobra.Command, cfg config.Config, name string, args catalog.Arguments, started time.Time, invokeErr error) {
	log := logger.New("history")
	svc, closeDB, err := openHistory(cmd.Context(), cfg)
	if err != nil {
		log.WithError(err).Warn("history unavailable")
		return
	}
	defer closeDB()

	id, err := svc.Record(cmd.Context(), name, args, history.SourceCLI, started, invokeErr)
	if err != nil {
		log.WithError(err).Warn("record invocation")
		return
	}
	log.WithFields(logrus.Fields{"workflow": name, "id": id}).Debug("invocation recorded")
}
