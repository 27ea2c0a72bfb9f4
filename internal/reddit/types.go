package reddit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrLoginFailed = errors.New("reddit: login failed")
	ErrRateLimited = errors.New("reddit: rate limited")
)

// Submission is a link or self post.
type Submission struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
}

func (s Submission) Created() time.Time {
	return time.Unix(int64(s.CreatedUTC), 0).UTC()
}

// Message is an inbox item, either a private message or a comment reply.
type Message struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	WasComment bool    `json:"was_comment"`
	CreatedUTC float64 `json:"created_utc"`
}

type listing[T any] struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string `json:"kind"`
			Data T      `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (l listing[T]) items() []T {
	out := make([]T, len(l.Data.Children))
	for i, c := range l.Data.Children {
		out[i] = c.Data
	}
	return out
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   float64 `json:"expires_in"`
	Scope       string  `json:"scope"`
	Error       string  `json:"error"`
}

type meResponse struct {
	Name string `json:"name"`
}

// apiResponse is the envelope returned by endpoints called with api_type=json.
type apiResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			URL  string `json:"url"`
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	} `json:"json"`
}

// APIError carries the errors reported inside an api_type=json envelope.
type APIError struct {
	Codes    []string
	Messages []string
}

func (e *APIError) Error() string {
	parts := make([]string, len(e.Codes))
	for i := range e.Codes {
		parts[i] = fmt.Sprintf("%s: %s", e.Codes[i], e.Messages[i])
	}
	return fmt.Sprintf("reddit api: %s", strings.Join(parts, "; "))
}

func (e *APIError) Is(target error) bool {
	if target != ErrRateLimited {
		return false
	}
	for _, c := range e.Codes {
		if c == "RATELIMIT" {
			return true
		}
	}
	return false
}

func apiErrorFrom(errs [][]any) error {
	if len(errs) == 0 {
		return nil
	}
	out := &APIError{}
	for _, e := range errs {
		var code, msg string
		if len(e) > 0 {
			code = fmt.Sprint(e[0])
		}
		if len(e) > 1 {
			msg = fmt.Sprint(e[1])
		}
		out.Codes = append(out.Codes, code)
		out.Messages = append(out.Messages, msg)
	}
	return out
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reddit: %s %s: status %d", e.Method, e.URL, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == 429
}
