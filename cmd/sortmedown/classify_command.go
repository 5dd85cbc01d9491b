package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sortmedown/internal/language"
	"sortmedown/internal/textutil"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <name>",
		Short: "Show how a release name would be classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.newSession(nil)
			if err != nil {
				return err
			}
			defer session.Close()

			name := strings.Join(args, " ")
			rec := session.sorter.Classify(cmd.Context(), name)
			rows := [][]string{
				{"Search term", textutil.CleanForSearch(name, session.cfg.Sorting.JunkTokens)},
				{"Kind", rec.Kind.String()},
				{"Title", rec.Title},
				{"Year", rec.Year},
				{"Language", language.DisplayName(rec.Language)},
				{"Genre", rec.Genre},
				{"Folder", rec.DisplayName()},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFields(rows))
			return nil
		},
	}
}
