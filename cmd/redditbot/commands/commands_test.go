package commands

import (
	"testing"
	"time"

	"redditbot/internal/config"

	"github.com/stretchr/testify/require"
)

func TestOneLine(t *testing.T) {
	require.Equal(t, "a b c", oneLine("a\n  b\tc", 10))
	require.Equal(t, "héllo...", oneLine("héllo world", 5))
}

func TestFormatTime(t *testing.T) {
	require.Empty(t, formatTime(time.Time{}))
}

func TestNewSource(t *testing.T) {
	source, err := newSource("rss", config.Credentials{UserAgent: config.DefaultUserAgent})
	require.NoError(t, err)
	require.Equal(t, "rss", source.Name())

	_, err = newSource("api", config.Credentials{})
	require.True(t, isMissingConfig(err))

	_, err = newSource("scrape", config.Credentials{})
	require.EqualError(t, err, `unknown source "scrape", expected api or rss`)
}
