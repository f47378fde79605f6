package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewProgressCommand creates the progress command group.
func NewProgressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Track lesson task completion",
	}

	cmd.AddCommand(newProgressSetCommand(), newProgressListCommand())
	return cmd
}

func newProgressSetCommand() *cobra.Command {
	var notDone bool

	cmd := &cobra.Command{
		Use:   "set LESSON TASK",
		Short: "Mark a lesson task as completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Progress.SetCompleted(cmd.Context(), args[0], args[1], !notDone)
		},
	}

	cmd.Flags().BoolVar(&notDone, "not-done", false, "Mark the task as not completed instead")
	return cmd
}

func newProgressListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [LESSON]",
		Short: "Show completion state per lesson",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			all, err := a.Progress.All(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				tasks := all[args[0]]
				all = map[string]map[string]bool{args[0]: tasks}
			}

			out := cmd.OutOrStdout()
			if len(all) == 0 {
				fmt.Fprintln(out, "No progress recorded.")
				return nil
			}

			lessons := make([]string, 0, len(all))
			for lesson := range all {
				lessons = append(lessons, lesson)
			}
			sort.Strings(lessons)
			for _, lesson := range lessons {
				fmt.Fprintf(out, "%s:\n", lesson)
				tasks := make([]string, 0, len(all[lesson]))
				for task := range all[lesson] {
					tasks = append(tasks, task)
				}
				sort.Strings(tasks)
				for _, task := range tasks {
					mark := " "
					if all[lesson][task] {
						mark = "x"
					}
					fmt.Fprintf(out, "  [%s] %s\n", mark, task)
				}
			}
			return nil
		},
	}
}
