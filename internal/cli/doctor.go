package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
	"github.com/Gadeoli/todoapp-mobile/internal/config"
	"github.com/Gadeoli/todoapp-mobile/internal/prefs"
	"github.com/Gadeoli/todoapp-mobile/internal/session"
)

const pingTimeout = 5 * time.Second

// errChecksFailed is returned when doctor reports a failed check
var errChecksFailed = errors.New("doctor checks failed")

func doctorCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the tasks client setup",
		Long:  `Runs diagnostic checks on configuration, local store and task service, and reports pass/fail for each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			passed, failed := 0, 0

			check := func(name string, ok bool, detail string) {
				if ok {
					fmt.Fprintf(out, "  ✓ %s\n", name)
					passed++
				} else {
					fmt.Fprintf(out, "  ✗ %s: %s\n", name, detail)
					failed++
				}
			}

			fmt.Fprintln(out, "Configuration:")
			check("~/.tasks/config.yaml", exists(config.GlobalConfigPath()), "run: tasks init --global")
			cfg, cfgErr := loadConfig(flags)
			if cfgErr != nil {
				check("config valid", false, cfgErr.Error())
				fmt.Fprintf(out, "\nResults: %d passed, %d failed\n", passed, failed)
				return errChecksFailed
			}
			check("config valid", true, "")
			fmt.Fprintf(out, "  → server: %s\n", cfg.Server.BaseURL)

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Local store:")
			store, storeErr := prefs.OpenSQLite(cfg.StorePath())
			check("preferences database", storeErr == nil, errString(storeErr))
			if storeErr == nil {
				defer store.Close()
				ctrl := session.NewController(nil, store, nil, nil)
				ctrl.SetLogger(newLogger(cmd, flags))
				s, err := ctrl.Restore(cmd.Context())
				check("signed in", err == nil, "run: tasks signin")
				if err == nil {
					fmt.Fprintf(out, "  → account: %s <%s>\n", s.Name, s.Email)
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Task service:")
			client := api.NewClient(cfg.Server.BaseURL)
			client.SetLogger(newLogger(cmd, flags))
			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()
			pingErr := client.Ping(ctx)
			check("reachable", pingErr == nil, errString(pingErr))

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Results: %d passed, %d failed\n", passed, failed)
			if failed > 0 {
				return errChecksFailed
			}
			return nil
		},
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
