package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/tangocho/internal/models"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a multi-day study plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		opts := models.PlanOptions{}
		opts.PlanType, _ = cmd.Flags().GetString("type")
		opts.TotalDays, _ = cmd.Flags().GetInt("days")
		opts.DailyNewWords, _ = cmd.Flags().GetInt("daily")
		opts.Modules, _ = cmd.Flags().GetStringSlice("modules")
		opts.Name, _ = cmd.Flags().GetString("name")
		if cmd.Flags().Changed("ratio") {
			ratio, _ := cmd.Flags().GetFloat64("ratio")
			opts.ReviewRatio = &ratio
		}

		svc := a.Services()
		plan, err := svc.Planner.GenerateStudyPlan(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			plan, err = svc.Plans.SavePlan(cmd.Context(), *plan)
			if err != nil {
				return err
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}

		printPlan(plan)
		return nil
	},
}

func init() {
	planCmd.Flags().String("type", models.PlanTypeDays, "plan type: days or dailyWords")
	planCmd.Flags().Int("days", 30, "total days, for --type days")
	planCmd.Flags().Int("daily", 20, "new words per day, for --type dailyWords")
	planCmd.Flags().Float64("ratio", 1, "review ratio")
	planCmd.Flags().StringSlice("modules", nil, "module types to include (default all)")
	planCmd.Flags().String("name", "", "plan name")
	planCmd.Flags().Bool("save", false, "save the plan as the active plan")
	planCmd.Flags().Bool("json", false, "print the full plan as JSON")
	rootCmd.AddCommand(planCmd)
}

func printPlan(plan *models.StudyPlan) {
	if plan.ID != "" {
		fmt.Printf("%s (%s)\n", plan.Name, plan.ID)
	} else {
		fmt.Println(plan.Name)
	}
	fmt.Printf("%s to %s: %d days, %d words, %d new per day\n",
		plan.StartDate.Format("2006-01-02"), plan.EndDate.Format("2006-01-02"),
		plan.TotalDays, plan.TotalWords, plan.DailyNewWords)

	for _, m := range plan.Modules {
		fmt.Printf("  %s  %d words, %d studied\n", m.Name, m.TotalWords, m.CompletedWords)
	}
	for _, d := range plan.Days {
		fmt.Printf("day %d  %s  new %d  review %d\n", d.Day, d.Date.Format("01-02"), len(d.NewWords), len(d.ReviewWords))
	}
}
