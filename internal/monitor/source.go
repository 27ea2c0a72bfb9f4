// Package monitor implements the feed scan and the inbox auto-responder.
package monitor

import (
	"context"
	"time"

	"redditbot/internal/feed"
	"redditbot/internal/reddit"
)

// Item is a post from any source, reduced to what matching needs.
type Item struct {
	Source    string
	ID        string
	Subreddit string
	Title     string
	Body      string
	Link      string
	Published time.Time
}

// Source lists the newest posts of a subreddit.
//
// note: fault injection point
type Source interface {
	Name() string
	Items(ctx context.Context, subreddit string, limit int) ([]Item, error)
}

type submissionLister interface {
	New(ctx context.Context, subreddit string, limit int) ([]reddit.Submission, error)
}

// APISource reads posts through the authenticated API.
type APISource struct {
	Client submissionLister
}

func (APISource) Name() string { return "api" }

func (s APISource) Items(ctx context.Context, subreddit string, limit int) ([]Item, error) {
	posts, err := s.Client.New(ctx, subreddit, limit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(posts))
	for i, p := range posts {
		items[i] = Item{
			Source:    "api",
			ID:        p.Name,
			Subreddit: subreddit,
			Title:     p.Title,
			Body:      p.Selftext,
			Link:      p.URL,
			Published: p.Created(),
		}
	}
	return items, nil
}

type feedFetcher interface {
	Fetch(ctx context.Context, subreddit string) ([]feed.Entry, error)
}

// RSSSource reads posts from the public feed, the feed decides how many
// entries it returns so limit only truncates.
type RSSSource struct {
	Fetcher feedFetcher
}

func (RSSSource) Name() string { return "rss" }

func (s RSSSource) Items(ctx context.Context, subreddit string, limit int) ([]Item, error) {
	entries, err := s.Fetcher.Fetch(ctx, subreddit)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{
			Source:    "rss",
			ID:        e.ID,
			Subreddit: subreddit,
			Title:     e.Title,
			Body:      e.Text,
			Link:      e.Link,
			Published: e.Published,
		}
	}
	return items, nil
}
