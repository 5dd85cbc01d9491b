package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sortmedown/internal/config"
	"sortmedown/internal/daemon"
	"sortmedown/internal/organizer"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun        bool
		split         bool
		cleanup       bool
		watch         bool
		watchInterval int
	)

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the source directory into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && cleanup {
				return errors.New("--watch cannot be combined with --cleanup-in-place")
			}
			if cmd.Flags().Changed("watch-interval") && watchInterval <= 0 {
				return errors.New("--watch-interval must be a positive number of minutes")
			}

			progress := newProgressReporter(cmd.ErrOrStderr(), "sorting")
			session, err := ctx.newSession(func(cfg *config.Config) {
				if split {
					cfg.Sorting.SplitEnabled = true
				}
				if cleanup {
					cfg.Sorting.CleanupInPlace = true
				}
			}, organizer.WithDryRun(dryRun), progress.Option())
			if err != nil {
				return err
			}
			defer session.Close()

			if session.cfg.Sorting.SplitEnabled && session.cfg.Paths.SplitMoviesDir == "" {
				return errors.New("--split requires paths.split_movies_dir")
			}
			if watch && session.cfg.Sorting.CleanupInPlace {
				return errors.New("watch mode cannot run with sorting.cleanup_in_place enabled")
			}

			release, err := holdRunLock(session)
			if err != nil {
				return err
			}
			defer release()

			if watch {
				var opts []daemon.Option
				if watchInterval > 0 {
					opts = append(opts, daemon.WithInterval(time.Duration(watchInterval)*time.Minute))
				}
				return runWatch(cmd, session, opts)
			}

			stats, err := session.sorter.ProcessDirectory(cmd.Context())
			progress.Finish()
			printStats(cmd.OutOrStdout(), stats, dryRun)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended moves without touching the filesystem")
	cmd.Flags().BoolVar(&split, "split", false, "Route movies in sorting.split_languages to the split directory")
	cmd.Flags().BoolVar(&cleanup, "cleanup-in-place", false, "Reorganize the source directory in place instead of moving to the library")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and re-sort when the source directory changes")
	cmd.Flags().IntVar(&watchInterval, "watch-interval", 0, "Minutes between source directory checks (overrides watch.interval_seconds)")
	return cmd
}

func runWatch(cmd *cobra.Command, session *sorterSession, opts []daemon.Option) error {
	watcher, err := daemon.NewWatcher(session.cfg, session.sorter, session.logger, opts...)
	if err != nil {
		return err
	}
	if err := watcher.Start(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes; press Ctrl+C to stop")
	return watcher.Wait()
}

func printStats(out io.Writer, stats organizer.Stats, dryRun bool) {
	counts := stats.Map()
	rows := make([][]string, 0, len(organizer.StatKeys))
	for _, key := range organizer.StatKeys {
		rows = append(rows, []string{key, strconv.Itoa(counts[key])})
	}
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing was moved")
	}
	fmt.Fprintln(out, renderTable([]string{"Bucket", "Count"}, rows, countAligns))
}
