// Package feed scans a subreddit's public RSS feed, no login is needed.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/pkg/htmlutil"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

const (
	report_fetcher_fetch = "fetcher.fetch"

	DefaultBaseURL = "https://www.reddit.com"
)

// Entry is a normalized feed entry.
type Entry struct {
	ID        string
	Title     string
	Link      string
	Published time.Time
	// Summary is the raw (html) summary of the entry.
	Summary string
	// Text is Summary with all markup removed.
	Text string
}

type Options struct {
	UserAgent   string
	ProxyServer string
	// BaseURL defaults to https://www.reddit.com
	BaseURL string
	Timeout time.Duration
}

type Fetcher struct {
	http    *resty.Client
	parser  *gofeed.Parser
	baseUrl string
	tel     telemetry.API
}

func NewFetcher(opts Options, tel telemetry.API) *Fetcher {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("feed", tel)

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	if opts.ProxyServer != "" {
		client.SetProxy(opts.ProxyServer)
	}
	telemetry.InstrumentResty(client, "feed/http", tel)

	return &Fetcher{
		http:    client,
		parser:  gofeed.NewParser(),
		baseUrl: strings.TrimSuffix(opts.BaseURL, "/"),
		tel:     tel,
	}
}

// URL returns the feed of the newest posts of a subreddit.
func (f *Fetcher) URL(subreddit string) string {
	return fmt.Sprintf("%s/r/%s/new/.rss", f.baseUrl, url.PathEscape(subreddit))
}

// Fetch downloads and parses the newest posts of a subreddit.
func (f *Fetcher) Fetch(ctx context.Context, subreddit string) ([]Entry, error) {
	feedUrl := f.URL(subreddit)
	f.tel.ReportDebug(report_fetcher_fetch, feedUrl)

	res, err := f.http.R().
		SetContext(ctx).
		Get(feedUrl)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_fetch, fmt.Errorf("fetch: %w", err), feedUrl)
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", feedUrl, res.StatusCode())
	}

	parsed, err := f.parser.Parse(bytes.NewReader(res.Body()))
	if err != nil {
		f.tel.ReportBroken(report_fetcher_fetch, fmt.Errorf("parse: %w", err), feedUrl)
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, entryFromItem(item))
	}
	return entries, nil
}

func entryFromItem(item *gofeed.Item) Entry {
	summary := item.Content
	if summary == "" {
		summary = item.Description
	}

	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	return Entry{
		ID:        pickGUID(item),
		Title:     item.Title,
		Link:      item.Link,
		Published: published,
		Summary:   summary,
		Text:      htmlutil.Text(summary),
	}
}

func pickGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.Link != "" {
		return item.Link
	}
	return item.Title
}
