package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sortmedown/internal/media"
	"sortmedown/internal/organizer"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Work through items in the mismatched directory",
	}
	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewReprocessCommand(ctx))
	reviewCmd.AddCommand(newReviewForceCommand(ctx))
	reviewCmd.AddCommand(newReviewDeleteCommand(ctx))
	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List files waiting for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.newSession(nil)
			if err != nil {
				return err
			}
			defer session.Close()

			items, err := session.sorter.ListMismatched()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Nothing to review")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.Name,
					item.Folder,
					humanize.IBytes(uint64(item.Size)),
					strconv.Itoa(item.Sidecars),
					item.Modified.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Folder", "Size", "Sidecars", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newReviewReprocessCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "reprocess <file> [name]",
		Short: "Classify a file again, optionally under a corrected name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.newSession(nil, organizer.WithDryRun(dryRun))
			if err != nil {
				return err
			}
			defer session.Close()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			override := ""
			if len(args) == 2 {
				override = args[1]
			}
			res := session.sorter.SortOne(cmd.Context(), path, override)
			printItemResult(cmd, res)
			return res.Err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the move without performing it")
	return cmd
}

func newReviewForceCommand(ctx *commandContext) *cobra.Command {
	var (
		kindFlag string
		split    bool
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "force <file> <folder>",
		Short: "Move a file into a named library folder without classification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := media.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			if kind == media.Unknown {
				return errors.New("--kind must name a library: movie, tv, anime-movie or anime-series")
			}
			if split && kind != media.Movie {
				return errors.New("--split only applies to movies")
			}
			session, err := ctx.newSession(nil, organizer.WithDryRun(dryRun))
			if err != nil {
				return err
			}
			defer session.Close()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			res := session.sorter.ForceMove(cmd.Context(), path, args[1], kind, split)
			printItemResult(cmd, res)
			return res.Err
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "movie", "Library to move into (movie, tv, anime-movie, anime-series)")
	cmd.Flags().BoolVar(&split, "split", false, "Use the split movies directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the move without performing it")
	return cmd
}

func newReviewDeleteCommand(ctx *commandContext) *cobra.Command {
	var (
		yes    bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "delete <file>",
		Short: "Delete a file and its sidecars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !dryRun {
				return errors.New("refusing to delete without --yes")
			}
			session, err := ctx.newSession(nil, organizer.WithDryRun(dryRun))
			if err != nil {
				return err
			}
			defer session.Close()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := session.sorter.DeleteItem(cmd.Context(), path); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would delete %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the deletion without performing it")
	return cmd
}

func printItemResult(cmd *cobra.Command, res organizer.ItemResult) {
	rows := [][]string{
		{"File", res.Path},
		{"Status", res.Status.String()},
	}
	if res.Name != "" {
		rows = append(rows, []string{"Searched as", res.Name})
	}
	if res.Record.Kind != media.Unknown || strings.TrimSpace(res.Record.Title) != "" {
		rows = append(rows, []string{"Kind", res.Record.Kind.String()}, []string{"Title", res.Record.DisplayName()})
	}
	if res.Destination != "" {
		rows = append(rows, []string{"Destination", res.Destination})
	}
	if res.Reason != "" {
		rows = append(rows, []string{"Reason", res.Reason})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderFields(rows))
}
