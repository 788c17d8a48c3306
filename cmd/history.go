// Package cmd implements the command-line interface for tokgrab.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/tokgrab-cli/tokgrab/color"
	"github.com/tokgrab-cli/tokgrab/history"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/style"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	historyCmd.Flags().StringP("delete", "d", "", "Remove the history record for the given reference")
	historyCmd.MarkFlagsMutuallyExclusive("json", "delete")

	historyCmd.SetOut(os.Stdout)
}

// historyCmd displays and manages the localized download history.
var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "Display the download history, optionally filtered by a fuzzy query",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if reference := lo.Must(cmd.Flags().GetString("delete")); reference != "" {
			saved, err := history.Get()
			handleErr(err)

			record, ok := saved[reference]
			if !ok {
				handleErr(fmt.Errorf("no history record for %s", reference))
			}

			handleErr(history.Remove(record))
			fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), reference)
			return
		}

		var records []*history.SavedDownload

		if len(args) == 1 {
			matched, err := history.Search(args[0])
			handleErr(err)
			records = matched
		} else {
			saved, err := history.Get()
			handleErr(err)

			records = lo.Values(saved)
			slices.SortFunc(records, func(a, b *history.SavedDownload) int {
				return b.DownloadedAt.Compare(a.DownloadedAt)
			})
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("history is empty"))
			return
		}

		for _, record := range records {
			cmd.Printf(
				"%s %s\n  %s\n  %s\n",
				icon.Get(icon.Download),
				style.Bold(record.String()),
				style.Fg(color.Blue)(record.Reference),
				style.Faint(record.Path),
			)
		}
	},
}
