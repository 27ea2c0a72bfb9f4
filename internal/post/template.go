// Package post parses pre-authored posts from markdown templates.
//
// A template carries two fields marked with fixed textual markers:
//
//	**Title**: My Title Here
//
//	**Body**:
//	My body here...
package post

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrMissingTitle = errors.New("could not find '**Title**:' in template")
	ErrMissingBody  = errors.New("could not find '**Body**:' in template")
)

// Post is a parsed template.
type Post struct {
	Title string
	Body  string
}

var (
	titleRegex = regexp.MustCompile(`\*\*Title\*\*:\s*(.+)`)
	bodyRegex  = regexp.MustCompile(`(?s)\*\*Body\*\*:\s*(.+)`)
)

const bodyMarker = "**Body**"

// ParseFile reads and parses the template at path.
func ParseFile(path string) (Post, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Post{}, fmt.Errorf("template not found: %s: %w", path, os.ErrNotExist)
	}
	if err != nil {
		return Post{}, fmt.Errorf("read template: %w", err)
	}
	return Parse(string(content))
}

// Parse extracts the title and body from template content.
func Parse(content string) (Post, error) {
	titleMatch := titleRegex.FindStringSubmatch(content)
	if titleMatch == nil {
		return Post{}, ErrMissingTitle
	}
	title := strings.TrimSpace(titleMatch[1])

	var body string
	bodyMatch := bodyRegex.FindStringSubmatch(content)
	switch {
	case bodyMatch != nil:
		body = strings.TrimSpace(bodyMatch[1])
	case strings.Contains(content, bodyMarker):
		_, after, _ := strings.Cut(content, bodyMarker)
		body = strings.TrimSpace(strings.TrimLeft(after, ": \n"))
	default:
		return Post{}, ErrMissingBody
	}

	return Post{Title: title, Body: body}, nil
}

// Preview returns at most n runes of the body followed by an ellipsis.
func (p Post) Preview(n int) string {
	n = max(n, 0)
	if utf8.RuneCountInString(p.Body) <= n {
		return p.Body + "..."
	}
	runes := []rune(p.Body)
	return string(runes[:n]) + "..."
}
