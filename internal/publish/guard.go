package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/post"
	"redditbot/internal/store"

	"github.com/antzucaro/matchr"
)

const (
	report_guard_history = "guard.history"
	report_guard_record  = "guard.record"
)

const (
	DuplicateSimilarity = 0.92
	DuplicateWindow     = 30 * 24 * time.Hour
)

// DuplicateError is returned when a post with a near identical title was
// published to the same subreddit inside the duplicate window.
type DuplicateError struct {
	Subreddit  string
	Title      string
	Previous   store.Publication
	Similarity float64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf(
		"r/%s already got %q on %s (similarity %.2f), use --force to publish anyway",
		e.Subreddit,
		e.Previous.Title,
		e.Previous.PublishedAt.Format(time.DateOnly),
		e.Similarity,
	)
}

type publicationStore interface {
	PublicationsSince(ctx context.Context, subreddit string, since time.Time) ([]store.Publication, error)
	RecordPublication(ctx context.Context, p store.Publication) error
}

// Guard wraps a publisher, refusing near duplicate posts and recording
// every publication that may have gone up.
type Guard struct {
	inner   Publisher
	history publicationStore
	force   bool
	now     func() time.Time
	tel     telemetry.API
}

// NewGuard creates a guard, with force the duplicate check is skipped but
// publications are still recorded.
func NewGuard(inner Publisher, history publicationStore, force bool, tel telemetry.API) Guard {
	assert.NotNil(inner)
	assert.NotNil(history)
	assert.NotNil(tel)
	return Guard{
		inner:   inner,
		history: history,
		force:   force,
		now:     time.Now,
		tel:     telemetry.NewScopedAPI("publish", tel),
	}
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

func (g Guard) duplicate(ctx context.Context, content post.Post, subreddit string) error {
	previous, err := g.history.PublicationsSince(ctx, subreddit, g.now().Add(-DuplicateWindow))
	if err != nil {
		g.tel.ReportBroken(report_guard_history, err)
		return fmt.Errorf("read publish history: %w", err)
	}
	title := normalizeTitle(content.Title)
	for _, p := range previous {
		sim := matchr.JaroWinkler(title, normalizeTitle(p.Title), false)
		if sim >= DuplicateSimilarity {
			return &DuplicateError{
				Subreddit:  subreddit,
				Title:      content.Title,
				Previous:   p,
				Similarity: sim,
			}
		}
	}
	return nil
}

func (g Guard) Publish(ctx context.Context, content post.Post, subreddit string) (Result, error) {
	if !g.force {
		err := g.duplicate(ctx, content, subreddit)
		if err != nil {
			return Result{}, err
		}
	}

	result, err := g.inner.Publish(ctx, content, subreddit)
	if err != nil {
		return result, err
	}
	if !result.Status.Posted() {
		g.tel.ReportDebug("not recording publication", subreddit, result.Status)
		return result, nil
	}

	recordErr := g.history.RecordPublication(ctx, store.Publication{
		Subreddit:   subreddit,
		Title:       content.Title,
		URL:         result.URL,
		Method:      result.Method,
		Status:      string(result.Status),
		PublishedAt: g.now(),
	})
	if recordErr != nil {
		g.tel.ReportBroken(report_guard_record, recordErr)
	}
	return result, nil
}
