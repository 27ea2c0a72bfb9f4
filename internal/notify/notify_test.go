package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"redditbot/internal/config"
	"redditbot/internal/monitor"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

var testReport = monitor.Report{
	Subreddit: "excel",
	Source:    "rss",
	Scanned:   25,
	Matches: []monitor.Match{
		{
			Item: monitor.Item{
				Title:     "Merge two sheets",
				Link:      "https://www.reddit.com/r/excel/comments/a/",
				Published: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
			},
			Keywords: []string{"merge"},
		},
		{
			Item:     monitor.Item{Title: "Messy csv"},
			Keywords: []string{"csv", "messy"},
			Seen:     true,
		},
	},
}

func TestDigest(t *testing.T) {
	require.Equal(t, `1 new matching posts in r/excel (25 scanned via rss).

Merge two sheets
  keywords: merge
  https://www.reddit.com/r/excel/comments/a/
  posted Sun, 18 Oct 2026 09:30:00 UTC
`, Digest(testReport, testReport.New()))
}

type call struct {
	addr string
	auth bool
	mail *email.Email
}

func TestNotify(t *testing.T) {
	var calls []call
	n := NewEmailNotifier(config.SmtpSettings{
		Server:       "smtp.example.com",
		Port:         587,
		EmailAddress: "bot@example.com",
		Password:     "secret",
	}, []string{"me@example.com"})
	n.send = func(mail *email.Email, addr string, auth smtp.Auth) error {
		calls = append(calls, call{addr: addr, auth: auth != nil, mail: mail})
		if auth != nil {
			return errors.New("smtp: server doesn't support AUTH")
		}
		return nil
	}
	require.True(t, n.Enabled())

	err := n.Notify(context.Background(), testReport)
	require.NoError(t, err)
	require.Len(t, calls, 2, "falls back to an unauthenticated send")
	require.Equal(t, "smtp.example.com:587", calls[0].addr)
	require.True(t, calls[0].auth)
	require.False(t, calls[1].auth)
	require.Equal(t, "[redditbot] 1 new posts in r/excel", calls[1].mail.Subject)
	require.Equal(t, []string{"me@example.com"}, calls[1].mail.To)
}

func TestNotifyNothingNew(t *testing.T) {
	n := NewEmailNotifier(config.SmtpSettings{Server: "smtp.example.com", EmailAddress: "bot@example.com"}, []string{"me@example.com"})
	n.send = func(*email.Email, string, smtp.Auth) error {
		t.Fatal("nothing should be sent")
		return nil
	}
	report := testReport
	report.Matches = report.Matches[1:]
	require.NoError(t, n.Notify(context.Background(), report))
}

func TestNotifyError(t *testing.T) {
	n := NewEmailNotifier(config.SmtpSettings{Server: "smtp.example.com", EmailAddress: "bot@example.com"}, []string{"me@example.com"})
	n.send = func(*email.Email, string, smtp.Auth) error {
		return errors.New("connection refused")
	}
	err := n.Notify(context.Background(), testReport)
	require.EqualError(t, err, "send digest: connection refused")
}

func TestDisabled(t *testing.T) {
	require.False(t, NewEmailNotifier(config.SmtpSettings{}, []string{"me@example.com"}).Enabled())
	require.False(t, NewEmailNotifier(config.SmtpSettings{Server: "s", EmailAddress: "a"}, nil).Enabled())
}
