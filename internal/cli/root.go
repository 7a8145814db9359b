package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	verbose    bool
	server     string
	configPath string
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Tasks - terminal client for the task service",
		Long: `Tasks signs you in to the task service and manages your task list.

Lists are shown per window (today, tomorrow, week, month). The "show
completed tasks" filter and your session are remembered between runs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.server, "server", "", "Task service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Use this config file instead of ~/.tasks and .tasks")

	rootCmd.AddCommand(signinCmd(flags))
	rootCmd.AddCommand(signupCmd(flags))
	rootCmd.AddCommand(signoutCmd(flags))
	rootCmd.AddCommand(whoamiCmd(flags))
	rootCmd.AddCommand(listCmd(flags))
	rootCmd.AddCommand(addCmd(flags))
	rootCmd.AddCommand(toggleCmd(flags))
	rootCmd.AddCommand(deleteCmd(flags))
	rootCmd.AddCommand(filterCmd(flags))
	rootCmd.AddCommand(configCmd(flags))
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(doctorCmd(flags))
	rootCmd.AddCommand(versionCmd(version))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// errReported marks failures the user already saw as a notification
var errReported = errors.New("reported")

type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() []error {
	return []error{e.err, errReported}
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasks %s\n", version)
		},
	}
}
