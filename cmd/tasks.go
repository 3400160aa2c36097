package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/tangocho/internal/models"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show or prepare today's study tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		task, created, err := a.Services().Tasks.EnsureTodayTasks(cmd.Context(), a.DailyOptions())
		if err != nil {
			return fmt.Errorf("failed to prepare today's tasks: %w", err)
		}
		if created {
			fmt.Println("prepared a new bundle for today")
		}

		printTask(task)
		return nil
	},
}

var tasksCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove task bundles older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.Services().Tasks.CleanupOldTasks(cmd.Context(), cfg.TaskRetentionDays)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d task bundles\n", removed)
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksCleanupCmd)
	rootCmd.AddCommand(tasksCmd)
}

func printTask(task models.DailyTask) {
	fmt.Printf("bundle %s (%s)\n", task.ID, task.CreatedAt.Format("2006-01-02 15:04"))
	if task.Completed {
		fmt.Println("completed")
	}

	fmt.Printf("review: %d words\n", len(task.Review))
	for _, r := range task.Review {
		fmt.Printf("  %s:%s  studied %d times, due after %d days\n", r.ModuleType, r.WordID, r.StudyCount, r.DueDays)
	}

	fmt.Printf("new: %d words\n", task.NewWordCount())
	for _, n := range task.New {
		fmt.Printf("  %s  %d\n", n.ModuleType, n.Count)
	}
}
