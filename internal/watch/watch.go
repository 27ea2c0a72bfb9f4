// Package watch runs the scan and inbox check on a schedule.
package watch

import (
	"context"
	"fmt"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/chrono"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/monitor"

	"github.com/mazen160/go-random"
)

const (
	report_watcher_scan    = "watcher.scan"
	report_watcher_inbox   = "watcher.inbox"
	report_watcher_notify  = "watcher.notify"
	report_watcher_new     = "watcher.new-matches"
	report_watcher_replies = "watcher.replies"
)

type Scanner interface {
	Scan(ctx context.Context, subreddit string, limit int) (monitor.Report, error)
}

type Responder interface {
	Check(ctx context.Context, send bool) ([]monitor.Plan, error)
}

type Notifier interface {
	Notify(ctx context.Context, report monitor.Report) error
}

type Options struct {
	Subreddit string
	Limit     int
	// Send makes inbox checks actually reply.
	Send bool
}

// Watcher scans a subreddit (and optionally the inbox) on every tick.
type Watcher struct {
	opts      Options
	scanner   Scanner
	responder Responder
	notifier  Notifier
	tel       telemetry.API
}

// NewWatcher creates a watcher, `responder` and `notifier` may be nil to
// skip inbox checks and digests.
func NewWatcher(opts Options, s Scanner, r Responder, n Notifier, tel telemetry.API) Watcher {
	assert.NotNil(s)
	assert.NotNil(tel)
	return Watcher{
		opts:      opts,
		scanner:   s,
		responder: r,
		notifier:  n,
		tel:       telemetry.NewScopedAPI("watch", tel),
	}
}

// Tick is a single run, failures of one step never stop the others.
func (w Watcher) Tick(ctx context.Context) {
	runId, err := random.String(8)
	if err != nil {
		runId = "unknown"
	}
	w.tel.ReportDebug("tick", runId, w.opts.Subreddit)

	report, err := w.scanner.Scan(ctx, w.opts.Subreddit, w.opts.Limit)
	if err != nil {
		w.tel.ReportBroken(report_watcher_scan, err, runId)
	} else {
		fresh := report.New()
		w.tel.ReportCount(report_watcher_new, int64(len(fresh)))
		for _, m := range fresh {
			w.tel.ReportDebug("new match", runId, m.Title, m.Link, m.Keywords)
		}
		if w.notifier != nil && len(fresh) > 0 {
			err = w.notifier.Notify(ctx, report)
			if err != nil {
				w.tel.ReportBroken(report_watcher_notify, err, runId)
			}
		}
	}

	if w.responder == nil {
		return
	}
	plans, err := w.responder.Check(ctx, w.opts.Send)
	if err != nil {
		w.tel.ReportBroken(report_watcher_inbox, err, runId)
		return
	}
	var sent int64
	for _, p := range plans {
		if p.Status == monitor.PlanSent {
			sent++
		}
	}
	w.tel.ReportCount(report_watcher_replies, sent)
}

// Run schedules Tick on `spec` and blocks until ctx is done.
func (w Watcher) Run(ctx context.Context, cron chrono.CronAPI, spec string) error {
	err := cron.Cron(spec, func() {
		w.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	<-ctx.Done()
	return nil
}
