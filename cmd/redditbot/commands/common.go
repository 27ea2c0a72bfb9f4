package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"redditbot/internal/components/serviceutil"
	"redditbot/internal/config"
	"redditbot/internal/feed"
	"redditbot/internal/monitor"
	"redditbot/internal/reddit"
	"redditbot/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
)

func mustSettings() config.Settings {
	settings, err := config.LoadSettings()
	if err != nil {
		serviceutil.Fatal("failed to read redditbot.json5", err)
	}
	return settings
}

func mustCredentials() config.Credentials {
	creds, err := config.LoadCredentials()
	if err != nil {
		serviceutil.Fatal("failed to read credentials from the environment", err)
	}
	return creds
}

func newRedditClient(creds config.Credentials) (*reddit.Client, error) {
	err := creds.Validate()
	if err != nil {
		return nil, err
	}
	return reddit.NewClient(reddit.Options{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Username:     creds.Username,
		Password:     creds.Password,
		UserAgent:    creds.UserAgent,
		ProxyServer:  creds.ProxyServer,
	}, tel)
}

func newSource(name string, creds config.Credentials) (monitor.Source, error) {
	switch name {
	case "api":
		client, err := newRedditClient(creds)
		if err != nil {
			return nil, err
		}
		return monitor.APISource{Client: client}, nil
	case "rss":
		return monitor.RSSSource{Fetcher: feed.NewFetcher(feed.Options{
			UserAgent:   creds.UserAgent,
			ProxyServer: creds.ProxyServer,
		}, tel)}, nil
	}
	return nil, fmt.Errorf("unknown source %q, expected api or rss", name)
}

func mustStore(settings config.Settings) store.Store {
	s, err := store.Open(settings.DbPath)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	return s
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.DateTime)
}

func isMissingConfig(err error) bool {
	var missing *config.MissingError
	return errors.As(err, &missing)
}
