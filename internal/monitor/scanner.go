package monitor

import (
	"context"
	"fmt"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/match"
	"redditbot/internal/store"
)

const (
	report_scanner_scan      = "scanner.scan"
	report_scanner_mark_seen = "scanner.mark-seen"
	report_scanner_matches   = "scanner.matches"
)

type Match struct {
	Item
	Keywords []string
	// Seen is true when a previous scan already reported this item.
	Seen bool
}

type Report struct {
	Subreddit string
	Source    string
	Scanned   int
	Matches   []Match
}

// New returns only the matches no previous scan reported.
func (r Report) New() []Match {
	var out []Match
	for _, m := range r.Matches {
		if !m.Seen {
			out = append(out, m)
		}
	}
	return out
}

type seenStore interface {
	MarkSeen(ctx context.Context, item store.SeenItem) (bool, error)
}

type Scanner struct {
	source   Source
	keywords match.Keywords
	store    seenStore
	tel      telemetry.API
}

// NewScanner creates a scanner, `seen` may be nil in which case every match
// is reported as new.
func NewScanner(source Source, keywords []string, seen seenStore, tel telemetry.API) Scanner {
	assert.NotNil(source)
	assert.NotNil(tel)
	return Scanner{
		source:   source,
		keywords: match.Keywords(keywords),
		store:    seen,
		tel:      telemetry.NewScopedAPI("monitor", tel),
	}
}

// Scan fetches a bounded list of recent posts and keeps the ones matching
// a keyword.
func (s Scanner) Scan(ctx context.Context, subreddit string, limit int) (Report, error) {
	items, err := s.source.Items(ctx, subreddit, limit)
	if err != nil {
		s.tel.ReportBroken(report_scanner_scan, err, s.source.Name(), subreddit)
		return Report{}, fmt.Errorf("scan r/%s via %s: %w", subreddit, s.source.Name(), err)
	}

	report := Report{
		Subreddit: subreddit,
		Source:    s.source.Name(),
		Scanned:   len(items),
	}
	for _, item := range items {
		keywords := s.keywords.Match(item.Title, item.Body)
		if len(keywords) == 0 {
			continue
		}

		m := Match{Item: item, Keywords: keywords}
		if s.store != nil {
			isNew, err := s.store.MarkSeen(ctx, store.SeenItem{
				Source:    item.Source,
				ID:        item.ID,
				Subreddit: item.Subreddit,
				Title:     item.Title,
				Link:      item.Link,
				Keywords:  keywords,
			})
			if err != nil {
				s.tel.ReportBroken(report_scanner_mark_seen, err, item.ID)
			} else {
				m.Seen = !isNew
			}
		}
		report.Matches = append(report.Matches, m)
	}

	s.tel.ReportCount(report_scanner_matches, int64(len(report.Matches)))
	return report, nil
}
