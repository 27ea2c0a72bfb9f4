// Package browser publishes posts by driving the reddit web UI in a real
// browser on a persistent profile.
package browser

import (
	"regexp"
	"time"
)

// Page is the subset of a browser tab the publish flow needs.
//
// note: fault injection point
type Page interface {
	Goto(url string, timeout time.Duration) error
	URL() string
	Sleep(d time.Duration)
	WaitForNetworkIdle(timeout time.Duration) error
	WaitForURL(pattern *regexp.Regexp, timeout time.Duration) error
	// Find waits up to timeout for the first element matching selector to
	// become visible.
	Find(selector string, timeout time.Duration) (Element, error)
	// Visible checks, without waiting, if selector matches a visible element.
	Visible(selector string) bool
	All(selector string) ([]Element, error)
	BodyText() (string, error)
	Press(key string) error
	InsertText(text string) error
	Screenshot(path string) error
}

type Element interface {
	Fill(value string) error
	Click(timeout time.Duration) error
	Attr(name string) (string, error)
	Disabled() (bool, error)
	Visible() bool
	Text() (string, error)
}
