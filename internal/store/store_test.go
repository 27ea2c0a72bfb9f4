package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) Store {
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMarkSeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	item := SeenItem{
		Source:    "rss",
		ID:        "t3_abc",
		Subreddit: "excel",
		Title:     "Merge sheets",
		Link:      "https://www.reddit.com/r/excel/comments/abc",
		Keywords:  []string{"merge"},
	}

	isNew, err := s.MarkSeen(ctx, item)
	require.NoError(t, err)
	require.True(t, isNew)

	isNew, err = s.MarkSeen(ctx, item)
	require.NoError(t, err)
	require.False(t, isNew)

	item.Source = "api"
	isNew, err = s.MarkSeen(ctx, item)
	require.NoError(t, err)
	require.True(t, isNew, "sources are tracked separately")
}

func TestReplies(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	replied, err := s.HasReplied(ctx, "t4_m1")
	require.NoError(t, err)
	require.False(t, replied)

	require.NoError(t, s.RecordReply(ctx, Reply{MessageID: "t4_m1", Author: "bob", Rule: "link", Reply: "here"}))

	replied, err = s.HasReplied(ctx, "t4_m1")
	require.NoError(t, err)
	require.True(t, replied)
}

func TestPublications(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RecordPublication(ctx, Publication{
		Subreddit:   "Test",
		Title:       "Old post",
		Method:      "api",
		Status:      "submitted",
		PublishedAt: now.Add(-time.Hour * 24 * 60),
	}))
	require.NoError(t, s.RecordPublication(ctx, Publication{
		Subreddit: "test",
		Title:     "New post",
		URL:       "https://www.reddit.com/r/test/comments/xyz/",
		Method:    "browser",
		Status:    "submitted",
	}))
	require.NoError(t, s.RecordPublication(ctx, Publication{
		Subreddit: "other",
		Title:     "Elsewhere",
		Method:    "api",
		Status:    "submitted",
	}))
	require.NoError(t, s.RecordPublication(ctx, Publication{
		Subreddit: "test",
		Title:     "Rejected post",
		Method:    "browser",
		Status:    "rate_limited",
	}))

	recent, err := s.PublicationsSince(ctx, "TEST", now.Add(-time.Hour*24*30))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "New post", recent[0].Title)
	require.Equal(t, now.Unix(), recent[0].PublishedAt.Unix())

	all, err := s.Publications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "Old post", all[3].Title)

	limited, err := s.Publications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "migrations are idempotent")
	require.NoError(t, s.Close())
}
