// Package cli builds the pomodesk command tree.
package cli

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"pomodesk/internal/app"
	"pomodesk/internal/core/model"

	"github.com/spf13/cobra"
)

// Version is reported by --version.
const Version = "1.0.0"

// Launcher runs the desktop interface on an opened application.
type Launcher func(application *app.App) error

type globalFlags struct {
	dataDir string
	verbose bool
}

// BuildCLI returns the root command. Running it without a subcommand starts
// the desktop interface through launch.
func BuildCLI(launch Launcher) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "pomodesk",
		Short:         "Pomodoro timer with task tracking",
		Long:          "pomodesk runs work and break phases in a tray app and keeps a local task list.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if launch == nil {
				return fmt.Errorf("desktop interface unavailable")
			}
			application, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer application.Close()
			return launch(application)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory for settings, tasks and timer state")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log storage diagnostics to stderr")

	rootCmd.AddCommand(buildStatusCommand(flags))
	rootCmd.AddCommand(buildTaskCommand(flags))

	return rootCmd
}

func (flags *globalFlags) open(cmd *cobra.Command) (*app.App, error) {
	logger := log.New(io.Discard, "", 0)
	if flags.verbose {
		logger = log.New(cmd.ErrOrStderr(), "pomodesk: ", log.LstdFlags)
	}
	return app.Open(app.Options{DataDir: flags.dataDir, Logger: logger})
}

func buildStatusCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved timer status and today's sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer application.Close()
			return showStatus(cmd, application, time.Now())
		},
	}
}

func showStatus(cmd *cobra.Command, application *app.App, now time.Time) error {
	out := cmd.OutOrStdout()

	snapshot, ok := application.Snapshots.Load()
	if !ok {
		snapshot = model.FreshSnapshot(application.Settings.TimerConfig().Durations)
	}
	state := "paused"
	if snapshot.Running {
		state = "running"
	}

	fmt.Fprintln(out, "=== Timer ===")
	fmt.Fprintf(out, "Phase:           %s\n", snapshot.Phase.Label())
	fmt.Fprintf(out, "Remaining:       %s\n", model.FormatRemaining(snapshot.RemainingSeconds))
	fmt.Fprintf(out, "State:           %s\n", state)
	fmt.Fprintf(out, "Work sessions:   %d\n", snapshot.CompletedWorkSessions)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	summary, err := application.Tasks.Summarize(cmd.Context(), midnight)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "=== Today ===")
	fmt.Fprintf(out, "Work sessions:   %d\n", summary.WorkSessions)
	fmt.Fprintf(out, "Breaks:          %d\n", summary.Breaks)
	fmt.Fprintf(out, "Focus time:      %s\n", summary.FocusTime.Round(time.Second))
	return nil
}

func buildTaskCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the local task list",
	}
	cmd.AddCommand(buildTaskAddCommand(flags))
	cmd.AddCommand(buildTaskListCommand(flags))
	cmd.AddCommand(buildTaskDoneCommand(flags))
	return cmd
}

func buildTaskAddCommand(flags *globalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			task, err := application.Tasks.Add(cmd.Context(), strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s  %s\n", task.ID, task.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func buildTaskListCommand(flags *globalFlags) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			tasks, err := application.Tasks.List(cmd.Context(), status)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks")
				return nil
			}
			for _, task := range tasks {
				fmt.Fprintf(out, "%-36s  %-11s  %s\n", task.ID, task.Status, task.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only list tasks with this status")
	return cmd
}

func buildTaskDoneCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			task, err := application.Tasks.UpdateStatus(cmd.Context(), args[0], model.StatusUpdate{Status: model.TaskStatusDone})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done %s  %s\n", task.ID, task.Name)
			return nil
		},
	}
}
