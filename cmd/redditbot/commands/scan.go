package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"redditbot/internal/components/serviceutil"
	"redditbot/internal/monitor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scanSource    string
	scanSubreddit string
	scanLimit     int
	scanNewOnly   bool
)

func init() {
	scanCmd.Flags().StringVar(&scanSource, "source", "api", "Where to read posts from: api (needs credentials) or rss (no login).")
	scanCmd.Flags().StringVarP(&scanSubreddit, "subreddit", "s", "", "The subreddit to scan, defaults to scan.subreddit.")
	scanCmd.Flags().IntVarP(&scanLimit, "limit", "n", 0, "How many recent posts to scan, defaults to scan.limit.")
	scanCmd.Flags().BoolVar(&scanNewOnly, "new", false, "Only print matches no previous scan reported.")
	rootCmd.AddCommand(scanCmd)
}

func renderMatches(matches []monitor.Match) {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Title", "Keywords", "Link", "Posted", "New"})
	for i, m := range matches {
		isNew := "yes"
		if m.Seen {
			isNew = ""
		}
		t.AppendRow(table.Row{
			i + 1,
			oneLine(m.Title, 60),
			strings.Join(m.Keywords, ", "),
			m.Link,
			formatTime(m.Published),
			isNew,
		})
	}
	t.Render()
}

var scanCmd = &cobra.Command{
	Use:   "scan [--source api|rss] [--subreddit <name>] [--limit <n>]",
	Short: "Scans the newest posts of a subreddit for keyword matches.",
	Run: func(cmd *cobra.Command, args []string) {
		settings := mustSettings()
		if scanSubreddit == "" {
			scanSubreddit = settings.Scan.Subreddit
		}
		if scanLimit <= 0 {
			scanLimit = settings.Scan.Limit
		}

		source, err := newSource(scanSource, mustCredentials())
		if err != nil {
			serviceutil.Fatal("failed to create post source", err)
		}

		db := mustStore(settings)
		defer db.Close()

		slog.Info(
			"scanning",
			"subreddit", scanSubreddit,
			"source", source.Name(),
			"keywords", settings.Keywords,
		)
		scanner := monitor.NewScanner(source, settings.Keywords, db, tel)
		report, err := scanner.Scan(cmd.Context(), scanSubreddit, scanLimit)
		if err != nil {
			serviceutil.Fatal("scan failed", err)
		}

		matches := report.Matches
		if scanNewOnly {
			matches = report.New()
		}
		if len(matches) > 0 {
			renderMatches(matches)
		}
		fmt.Printf(
			"Scan complete. %d of %d posts matched, %d new.\n",
			len(report.Matches), report.Scanned, len(report.New()),
		)
	},
}
