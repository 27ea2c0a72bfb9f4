package commands

import (
	"log/slog"
	"time"

	"redditbot/internal/components/chrono"
	"redditbot/internal/components/serviceutil"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/monitor"
	"redditbot/internal/notify"
	"redditbot/internal/watch"

	"github.com/spf13/cobra"
)

var (
	watchSource string
	watchSend   bool
	watchNow    bool
)

func init() {
	watchCmd.Flags().StringVar(&watchSource, "source", "", "Where to read posts from: api or rss, defaults to watch.source.")
	watchCmd.Flags().BoolVar(&watchSend, "send", false, "Send planned inbox replies instead of only logging them.")
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "Run once immediately before waiting for the schedule.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--source api|rss] [--send]",
	Short: "Scans the configured subreddit and checks the inbox on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		settings := mustSettings()
		creds := mustCredentials()
		if watchSource == "" {
			watchSource = settings.Watch.Source
		}

		source, err := newSource(watchSource, creds)
		if err != nil {
			serviceutil.Fatal("failed to create post source", err)
		}

		db := mustStore(settings)
		defer db.Close()

		var responder watch.Responder
		client, err := newRedditClient(creds)
		switch {
		case err == nil:
			responder = monitor.NewResponder(client, settings.ReplyRules, db, tel)
		case isMissingConfig(err):
			slog.Info("inbox checks disabled", "reason", err.Error())
		default:
			serviceutil.Fatal("failed to create reddit client", err)
		}

		var notifier watch.Notifier
		mail := notify.NewEmailNotifier(settings.Smtp, settings.DigestTo)
		if mail.Enabled() {
			notifier = mail
		}

		w := watch.NewWatcher(
			watch.Options{
				Subreddit: settings.Scan.Subreddit,
				Limit:     settings.Scan.Limit,
				Send:      watchSend,
			},
			monitor.NewScanner(source, settings.Keywords, db, tel),
			responder,
			notifier,
			tel,
		)

		telemetry.InstrumentPerfStats(ctx, tel, time.Minute)

		cron := chrono.NewStandardCron(tel)
		defer cron.Stop()

		slog.Info(
			"watching",
			"subreddit", settings.Scan.Subreddit,
			"source", source.Name(),
			"cron", settings.Watch.Cron,
			"send", watchSend,
		)
		if watchNow {
			w.Tick(ctx)
		}
		err = w.Run(ctx, cron, settings.Watch.Cron)
		if err != nil {
			serviceutil.Fatal("failed to schedule watch", err)
		}
		slog.Info("stopping")
	},
}
