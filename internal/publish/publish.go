// Package publish submits template posts to a subreddit, through the
// official API or through the web UI (see the browser subpackage).
package publish

import (
	"context"

	"redditbot/internal/post"
)

type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusRateLimited   Status = "rate_limited"
	StatusPlatformError Status = "platform_error"
	// StatusUnverified means the submit action ran but the post page never
	// showed up, the post may or may not exist.
	StatusUnverified Status = "unverified"
)

// Posted reports whether the post may exist on the subreddit after a
// publish with this status.
func (s Status) Posted() bool {
	return s == StatusSubmitted || s == StatusUnverified
}

type Result struct {
	Method     string
	Status     Status
	URL        string
	Screenshot string
}

// Publisher publishes a single post.
//
// note: fault injection point
type Publisher interface {
	Publish(ctx context.Context, p post.Post, subreddit string) (Result, error)
}
