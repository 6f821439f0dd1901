// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/texttopo/internal/history"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent batch runs from the history ledger",
	Long: `Runs prints the most recent batch runs recorded in the run-history
database, newest first. With --run it prints the per-file outcomes of
one run instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("history_dir")
		if dir == "" {
			return errors.New("run history is disabled (history_dir is empty)")
		}

		store, err := history.Open(dir)
		if err != nil {
			return err
		}
		defer store.Close()

		if runID, _ := cmd.Flags().GetInt64("run"); runID > 0 {
			outcomes, err := store.Outcomes(cmd.Context(), runID)
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				line := fmt.Sprintf("%-9s %s", o.Status, o.Path)
				if o.Message != "" {
					line += " (" + o.Message + ")"
				}
				fmt.Println(line)
			}
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.RecentRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("#%-4d %s  %s  %d extracted, %d skipped, %d failed\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Root,
				r.Succeeded, r.Skipped, r.Failed)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.Flags().Int64("run", 0, "print per-file outcomes for this run ID")

	rootCmd.AddCommand(runsCmd)
}
