package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Gadeoli/todoapp-mobile/internal/tasklist"
	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

const (
	dateFlagLayout = "2006-01-02"
	taskDateLayout = "Mon, 2 Jan"
)

// windowFlags select the list window of a task command
type windowFlags struct {
	view string
	days int
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.view, "view", "", "Window: today, tomorrow, week or month (default from config)")
	cmd.Flags().IntVar(&w.days, "days", 0, "Window of N days ahead (overrides --view)")
}

func (w *windowFlags) daysAhead(cmd *cobra.Command, a *app) (int, error) {
	if cmd.Flags().Changed("days") {
		if w.days < 0 {
			return 0, fmt.Errorf("--days must not be negative, got %d", w.days)
		}
		return w.days, nil
	}

	name := w.view
	if name == "" {
		name = a.cfg.Tasks.DefaultView
	}
	view, ok := tasklist.ViewByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown view %q (want today, tomorrow, week or month)", name)
	}
	return view.DaysAhead, nil
}

// openList restores the session and initializes the list of the window
func openList(cmd *cobra.Command, flags *globalFlags, window *windowFlags) (*app, *tasklist.Controller, error) {
	a, err := newApp(cmd, flags)
	if err != nil {
		return nil, nil, err
	}

	days, err := window.daysAhead(cmd, a)
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	_, auth, err := a.restore(cmd.Context())
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	ctrl := tasklist.NewController(a.client, auth, a.store, a.notifier, days)
	ctrl.SetLogger(a.logger)

	if err := ctrl.Initialize(cmd.Context()); err != nil {
		a.Close()
		return nil, nil, reported(err)
	}
	return a, ctrl, nil
}

func listCmd(flags *globalFlags) *cobra.Command {
	window := &windowFlags{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks due within a window",
		Example: `  tasks list
  tasks list --view week
  tasks list --days 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctrl, err := openList(cmd, flags, window)
			if err != nil {
				return err
			}
			defer a.Close()

			render(a.out, ctrl, time.Now())
			return nil
		},
	}
	window.register(cmd)

	return cmd
}

func addCmd(flags *globalFlags) *cobra.Command {
	window := &windowFlags{}
	var date string

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Create a task",
		Long: `Creates a task and shows the refreshed list. Without --date the task is
due now.`,
		Example: `  tasks add "Buy milk"
  tasks add "Pay rent" --date 2026-11-01 --view month`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := types.Draft{Desc: strings.Join(args, " ")}
			if date != "" {
				due, err := parseDueDate(date, time.Now())
				if err != nil {
					return err
				}
				draft.Date = due
			}

			a, ctrl, err := openList(cmd, flags, window)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.OpenAdd()
			if err := ctrl.AddTask(cmd.Context(), draft); err != nil {
				render(a.out, ctrl, time.Now())
				return reported(err)
			}
			render(a.out, ctrl, time.Now())
			return nil
		},
	}
	window.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "Due date (YYYY-MM-DD)")

	return cmd
}

// parseDueDate keeps the clock time of now on the chosen day
func parseDueDate(value string, now time.Time) (time.Time, error) {
	day, err := time.ParseInLocation(dateFlagLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", value)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, now.Location()), nil
}

func toggleCmd(flags *globalFlags) *cobra.Command {
	window := &windowFlags{}

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task done, or pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, ctrl, err := openList(cmd, flags, window)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := ctrl.ToggleTask(cmd.Context(), id); err != nil {
				return reported(err)
			}
			render(a.out, ctrl, time.Now())
			return nil
		},
	}
	window.register(cmd)

	return cmd
}

func deleteCmd(flags *globalFlags) *cobra.Command {
	window := &windowFlags{}

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, ctrl, err := openList(cmd, flags, window)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := ctrl.DeleteTask(cmd.Context(), id); err != nil {
				return reported(err)
			}
			render(a.out, ctrl, time.Now())
			return nil
		},
	}
	window.register(cmd)

	return cmd
}

func filterCmd(flags *globalFlags) *cobra.Command {
	window := &windowFlags{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or hide completed tasks",
		Long: `Flips the completed-tasks filter. The choice is remembered for every
later list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctrl, err := openList(cmd, flags, window)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl.ToggleFilter(cmd.Context())
			if ctrl.ShowDoneTasks() {
				fmt.Fprintln(a.out, "Showing completed tasks")
			} else {
				fmt.Fprintln(a.out, "Hiding completed tasks")
			}
			render(a.out, ctrl, time.Now())
			return nil
		},
	}
	window.register(cmd)

	return cmd
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

// render prints the window heading and the visible tasks
func render(out io.Writer, ctrl *tasklist.Controller, now time.Time) {
	days := ctrl.DaysAhead()
	heading := fmt.Sprintf("%s · %s", tasklist.Title(days), tasklist.Subtitle(now))
	fmt.Fprintln(out, colorize(out, tasklist.Palette[tasklist.ColorKey(days)], heading))

	visible := ctrl.VisibleTasks()
	if len(visible) == 0 {
		fmt.Fprintln(out, "  No tasks")
	}
	for _, task := range visible {
		fmt.Fprintln(out, formatTask(task))
	}

	if hidden := len(ctrl.Tasks()) - len(visible); hidden > 0 {
		fmt.Fprintf(out, "  (%d completed hidden; 'tasks filter' shows them)\n", hidden)
	}
}

func formatTask(task types.Task) string {
	mark := "[ ]"
	if task.Done() {
		mark = "[x]"
	}
	line := fmt.Sprintf("  %s %-4d %s  (%s)", mark, task.ID, task.Desc, task.EstimateAt.Local().Format(taskDateLayout))
	if task.Done() {
		line += " done " + task.DoneAt.Local().Format(taskDateLayout)
	}
	return line
}

// colorize wraps s in a 24-bit color escape when out is a terminal
func colorize(out io.Writer, hex, s string) string {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) || os.Getenv("NO_COLOR") != "" {
		return s
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return s
	}
	return fmt.Sprintf("\x1b[1;38;2;%d;%d;%dm%s\x1b[0m", r, g, b, s)
}
