package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/liberioai/dossier/internal/config"
	"github.com/liberioai/dossier/internal/pipe"
	"github.com/liberioai/dossier/internal/ui"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage stored source credentials",
		Long: `Manage credentials for the GitHub and S3 sources.

Stored credentials are used when the config file leaves them empty.
Environment variables (GITHUB_TOKEN, AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY) take precedence over stored values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCredentials(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show which credentials are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCredentials(cmd)
		},
	})
	cmd.AddCommand(newCredentialsSetCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RemoveCredential(args[0]); err != nil {
				return err
			}
			ui.NewPrinter(cmd.OutOrStdout()).Success("Removed " + args[0])
			return nil
		},
	})

	return cmd
}

func newCredentialsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> [value]",
		Short: "Store a credential (github, s3-access-key, s3-secret-key)",
		Long: `Store a credential.

Without a value the secret is prompted for when attached to a terminal,
or read from stdin otherwise.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var value string
			switch {
			case len(args) == 2:
				value = args[1]
			case pipe.IsInteractive():
				err := huh.NewInput().
					Title(id).
					EchoMode(huh.EchoModePassword).
					Value(&value).
					Run()
				if err != nil {
					return err
				}
			default:
				s, err := pipe.ReadStdin()
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				value = strings.TrimSpace(s)
			}

			if err := config.StoreCredential(id, value); err != nil {
				return err
			}
			ui.NewPrinter(cmd.OutOrStdout()).Success("Stored " + id)
			return nil
		},
	}
}

func listCredentials(cmd *cobra.Command) error {
	stored, err := config.LoadStoredCredentials()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	for _, s := range config.KnownSecrets() {
		_, saved := stored.Credentials[s.ID]
		switch {
		case s.HasKey:
			p.Success(fmt.Sprintf("%-14s from $%s", s.ID, s.EnvVar))
		case saved:
			p.Success(fmt.Sprintf("%-14s stored", s.ID))
		default:
			p.Info(fmt.Sprintf("%-14s not set", s.ID))
		}
	}
	return nil
}
