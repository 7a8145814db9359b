package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Gadeoli/todoapp-mobile/internal/config"
)

func initCmd() *cobra.Command {
	var (
		global bool
		force  bool
		server string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration",
		Long: `Writes a default configuration file.

Without flags: creates .tasks/config.yaml in the current directory for
project-specific overrides.
With --global: creates ~/.tasks/config.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server != "" {
				cfg := config.DefaultConfig()
				cfg.Server.BaseURL = server
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			var path string
			if global {
				path = config.GlobalConfigPath()
			} else {
				path = config.ProjectConfigPath()
			}

			if exists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
			}

			var err error
			switch {
			case global && server != "":
				err = config.WriteDefaultWithServer(path, server)
			case global:
				err = config.WriteDefault(path)
			default:
				err = config.WriteProjectDefault(path)
			}
			if err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Initialize ~/.tasks/config.yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&server, "server", "", "Task service base URL for the global config")

	return cmd
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
