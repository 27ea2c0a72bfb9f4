// Package match holds the string heuristics of the bot: keyword matching
// for feed scans and rule matching for inbox replies.
package match

import "strings"

var DefaultKeywords = []string{"merge", "combine", "csv", "excel", "messy", "clean"}

// Keywords is a static list of case-insensitive keywords.
type Keywords []string

// Match returns the keywords contained in `title + " " + body`, compared
// case-insensitively, in list order and as configured.
func (k Keywords) Match(title, body string) []string {
	text := strings.ToLower(title + " " + body)
	var matched []string
	for _, kw := range k {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		if strings.Contains(text, needle) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func (k Keywords) Matches(title, body string) bool {
	return len(k.Match(title, body)) > 0
}
