package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"redditbot/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>newest submissions : excel</title>
  <entry>
    <author><name>/u/alice</name></author>
    <content type="html">&lt;div class="md"&gt;&lt;p&gt;I have two &lt;strong&gt;messy&lt;/strong&gt; sheets&lt;/p&gt;&lt;/div&gt;</content>
    <id>t3_abc123</id>
    <link href="https://www.reddit.com/r/excel/comments/abc123/combine_sheets/" />
    <updated>2026-10-18T09:30:00+00:00</updated>
    <published>2026-10-18T09:30:00+00:00</published>
    <title>Combine sheets?</title>
  </entry>
  <entry>
    <content type="html">&lt;a href="https://example.com/csv"&gt;link&lt;/a&gt;</content>
    <id>t3_def456</id>
    <link href="https://www.reddit.com/r/excel/comments/def456/charts/" />
    <updated>2026-10-18T08:00:00+00:00</updated>
    <title>Charts</title>
  </entry>
</feed>`

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/excel/new/.rss", r.URL.Path)
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomFeed))
	}))
	defer server.Close()

	fetcher := NewFetcher(Options{UserAgent: "test-agent", BaseURL: server.URL}, &telemetry.TestAPI{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	entries, err := fetcher.Fetch(ctx, "excel")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "t3_abc123", entries[0].ID)
	require.Equal(t, "Combine sheets?", entries[0].Title)
	require.Equal(t, "https://www.reddit.com/r/excel/comments/abc123/combine_sheets/", entries[0].Link)
	require.Equal(t, "I have two messy sheets", entries[0].Text)
	require.Equal(t, time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC), entries[0].Published.UTC())

	require.Equal(t, "link", entries[1].Text, "markup like hrefs never reaches the text")
	require.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC), entries[1].Published.UTC())
}

func TestFetchInvalidFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(Options{BaseURL: server.URL}, &telemetry.TestAPI{})
	_, err := fetcher.Fetch(context.Background(), "excel")
	require.ErrorContains(t, err, "parse rss")
}

func TestFetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher := NewFetcher(Options{BaseURL: server.URL}, &telemetry.TestAPI{})
	_, err := fetcher.Fetch(context.Background(), "excel")
	require.ErrorContains(t, err, "unexpected status 429")
}

func TestURL(t *testing.T) {
	fetcher := NewFetcher(Options{}, &telemetry.TestAPI{})
	require.Equal(t, "https://www.reddit.com/r/excel/new/.rss", fetcher.URL("excel"))
}
