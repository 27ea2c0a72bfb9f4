// Package notify mails a digest of new scan matches.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"redditbot/internal/config"
	"redditbot/internal/monitor"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("redditbot/internal/notify")

type sender func(mail *email.Email, addr string, auth smtp.Auth) error

func sendMail(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

type EmailNotifier struct {
	smtp config.SmtpSettings
	to   []string
	send sender
}

func NewEmailNotifier(settings config.SmtpSettings, to []string) EmailNotifier {
	return EmailNotifier{
		smtp: settings,
		to:   to,
		send: sendMail,
	}
}

// Enabled is false when there is no SMTP server or nobody to mail.
func (n EmailNotifier) Enabled() bool {
	return n.smtp.Enabled() && len(n.to) > 0
}

// Digest renders the plain text body of a digest mail.
func Digest(report monitor.Report, matches []monitor.Match) string {
	var out strings.Builder
	fmt.Fprintf(
		&out,
		"%d new matching posts in r/%s (%d scanned via %s).\n",
		len(matches), report.Subreddit, report.Scanned, report.Source,
	)
	for _, m := range matches {
		out.WriteString("\n")
		fmt.Fprintf(&out, "%s\n", m.Title)
		fmt.Fprintf(&out, "  keywords: %s\n", strings.Join(m.Keywords, ", "))
		if m.Link != "" {
			fmt.Fprintf(&out, "  %s\n", m.Link)
		}
		if !m.Published.IsZero() {
			fmt.Fprintf(&out, "  posted %s\n", m.Published.UTC().Format(time.RFC1123))
		}
	}
	return out.String()
}

// Notify mails the new matches of a report, it does nothing when there are
// none.
func (n EmailNotifier) Notify(ctx context.Context, report monitor.Report) error {
	matches := report.New()
	if len(matches) == 0 {
		return nil
	}

	_, span := tracer.Start(ctx, "Notify")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("redditbot <%s>", n.smtp.EmailAddress)
	mail.To = n.to
	mail.Subject = fmt.Sprintf("[redditbot] %d new posts in r/%s", len(matches), report.Subreddit)
	mail.Text = []byte(Digest(report, matches))

	addr := fmt.Sprintf("%s:%d", n.smtp.Server, n.smtp.Port)
	err := n.send(mail, addr, smtp.PlainAuth("", n.smtp.EmailAddress, n.smtp.Password, n.smtp.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}
