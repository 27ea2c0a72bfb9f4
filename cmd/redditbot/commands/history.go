package commands

import (
	"redditbot/internal/components/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "How many publications to list.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Lists the posts previously published by the bot.",
	Run: func(cmd *cobra.Command, args []string) {
		db := mustStore(mustSettings())
		defer db.Close()

		publications, err := db.Publications(cmd.Context(), historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to read publish history", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"When", "Subreddit", "Title", "Method", "Status", "URL"})
		for _, p := range publications {
			t.AppendRow(table.Row{
				formatTime(p.PublishedAt),
				"r/" + p.Subreddit,
				oneLine(p.Title, 50),
				p.Method,
				p.Status,
				p.URL,
			})
		}
		t.Render()
	},
}
