package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-module word counts and study progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.Services()
		ctx := cmd.Context()

		stats, err := svc.Catalog.LoadAllStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		overview := svc.Progress.Overview(ctx)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"modules":  stats,
				"overview": overview,
			})
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODULE\tNAME\tTOTAL\tSTUDIED\tFAVORITE\t")
		for _, m := range svc.Catalog.Modules() {
			s := stats[m.Type]
			total := fmt.Sprint(s.Total)
			if s.Degraded {
				total += " (unavailable)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t\n", m.Type, s.Name, total, s.Studied, s.Favorite)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nstudied %d words (%d study events) over %d days, %d favorites\n",
			overview.StudiedWords, overview.TotalStudyCount, overview.StudyDays, overview.FavoriteCount)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(statsCmd)
}
