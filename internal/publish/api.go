package publish

import (
	"context"
	"errors"
	"fmt"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/post"
	"redditbot/internal/reddit"
)

const (
	report_api_publisher_login  = "api-publisher.login"
	report_api_publisher_submit = "api-publisher.submit"
)

type submitter interface {
	Login(ctx context.Context) error
	Me(ctx context.Context) (string, error)
	Submit(ctx context.Context, subreddit, title, body string) (reddit.Submission, error)
}

// APIPublisher publishes through the official API.
type APIPublisher struct {
	client submitter
	tel    telemetry.API
}

func NewAPIPublisher(client submitter, tel telemetry.API) APIPublisher {
	assert.NotNil(client)
	assert.NotNil(tel)
	return APIPublisher{
		client: client,
		tel:    telemetry.NewScopedAPI("publish", tel),
	}
}

func (p APIPublisher) Publish(ctx context.Context, content post.Post, subreddit string) (Result, error) {
	result := Result{Method: "api"}

	err := p.client.Login(ctx)
	if err != nil {
		p.tel.ReportBroken(report_api_publisher_login, err)
		return result, fmt.Errorf("login: %w", err)
	}
	user, err := p.client.Me(ctx)
	if err != nil {
		p.tel.ReportWarning(report_api_publisher_login, fmt.Errorf("whoami: %w", err))
	} else {
		p.tel.ReportDebug("authenticated", user)
	}

	submission, err := p.client.Submit(ctx, subreddit, content.Title, content.Body)
	if err != nil {
		p.tel.ReportBroken(report_api_publisher_submit, err, subreddit)
		result.Status = StatusPlatformError
		if errors.Is(err, reddit.ErrRateLimited) {
			result.Status = StatusRateLimited
		}
		return result, fmt.Errorf("submit to r/%s: %w", subreddit, err)
	}

	result.Status = StatusSubmitted
	result.URL = submission.URL
	return result, nil
}
