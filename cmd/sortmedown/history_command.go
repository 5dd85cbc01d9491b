package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sortmedown/internal/config"
	"sortmedown/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		showRun string
	)
	cmd := &cobra.Command{
		Use:         "history",
		Short:       "Show recent sort runs from the journal",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Read(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled (history.enabled = false)")
				return nil
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if id := strings.TrimSpace(showRun); id != "" {
				moves, err := store.Moves(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(moves) == 0 {
					fmt.Fprintf(out, "No moves recorded for run %s\n", id)
					return nil
				}
				rows := make([][]string, 0, len(moves))
				for _, m := range moves {
					rows = append(rows, []string{m.MovedAt.Local().Format(time.DateTime), m.Kind, m.Source, m.Destination})
				}
				fmt.Fprintln(out, renderTable([]string{"Moved", "Kind", "Source", "Destination"}, rows, nil))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Mode,
					yesNo(run.DryRun),
					run.StartedAt.Local().Format(time.DateTime),
					runDuration(run),
					formatCounts(run.Counts),
					strconv.Itoa(run.Moves),
					run.Error,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Mode", "Dry run", "Started", "Took", "Counts", "Moves", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&showRun, "run", "", "Show the moves recorded for one run ID")
	return cmd
}

func runDuration(run history.Run) string {
	if !run.Finished() {
		return "running"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

// formatCounts renders non-zero counts as "movies=2 unknown=1".
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for key, value := range counts {
		if value != 0 && key != "processed" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	if processed, ok := counts["processed"]; ok {
		parts = append(parts, fmt.Sprintf("processed=%d", processed))
	}
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[key]))
	}
	return strings.Join(parts, " ")
}
