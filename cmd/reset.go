package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all study progress, tasks and plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("refusing to clear data without --yes")
		}

		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Services().ClearAllData(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("all study data cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "confirm deleting all data")
	rootCmd.AddCommand(resetCmd)
}
