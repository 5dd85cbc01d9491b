package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"sortmedown/internal/daemon"
	"sortmedown/internal/logging"
	"sortmedown/internal/organizer"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Batch utilities for an existing library directory",
	}
	libraryCmd.AddCommand(newLibraryReorganizeCommand(ctx))
	libraryCmd.AddCommand(newLibraryRenameCommand(ctx))
	return libraryCmd
}

func newLibraryReorganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "reorganize <dir> [files...]",
		Short: "Move files into Title (Year) folders inside dir",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			progress := newProgressReporter(cmd.ErrOrStderr(), "reorganizing")
			session, err := ctx.newSession(nil, organizer.WithDryRun(dryRun), progress.Option())
			if err != nil {
				return err
			}
			defer session.Close()

			release, err := holdRunLock(session)
			if err != nil {
				return err
			}
			defer release()

			stats, err := session.sorter.ReorganizeInPlace(cmd.Context(), dir, args[1:])
			progress.Finish()
			printStats(cmd.OutOrStdout(), stats, dryRun)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended moves without touching the filesystem")
	return cmd
}

func newLibraryRenameCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "rename <dir> [entries...]",
		Short: "Rename folders and loose files in dir to their canonical names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			progress := newProgressReporter(cmd.ErrOrStderr(), "renaming")
			session, err := ctx.newSession(nil, organizer.WithDryRun(dryRun), progress.Option())
			if err != nil {
				return err
			}
			defer session.Close()

			release, err := holdRunLock(session)
			if err != nil {
				return err
			}
			defer release()

			summary, err := session.sorter.RenameInLibrary(cmd.Context(), dir, args[1:])
			progress.Finish()
			rows := [][]string{
				{"processed", strconv.Itoa(summary.Processed)},
				{"renamed", strconv.Itoa(summary.Renamed)},
				{"skipped", strconv.Itoa(summary.Skipped)},
				{"errors", strconv.Itoa(summary.Errors)},
			}
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Dry run: nothing was renamed")
			}
			fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, rows, countAligns))
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended renames without touching the filesystem")
	return cmd
}

func holdRunLock(session *sorterSession) (func(), error) {
	lock, err := daemon.AcquireRunLock(session.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(); err != nil {
			session.logger.Warn("release run lock", logging.Error(err))
		}
	}, nil
}
