package match

import "strings"

// Rule maps a set of trigger substrings to a canned reply.
type Rule struct {
	Name     string   `json:"name"`
	Triggers []string `json:"triggers"`
	Reply    string   `json:"reply"`
}

var DefaultRules = []Rule{
	{
		Name:     "link",
		Triggers: []string{"link", "url"},
		Reply:    "Here is the link to the tool: [Your URL Here]. It runs 100% locally!",
	},
	{
		Name:     "price",
		Triggers: []string{"price", "cost"},
		Reply:    "It is completely free to use right now!",
	},
	{
		Name:     "safety",
		Triggers: []string{"safe", "security"},
		Reply:    "Yes, it is safe. All processing happens in your browser, no data is uploaded to any server.",
	},
}

// Rules are evaluated in order, the first one with a trigger wins.
type Rules []Rule

// Reply finds the first rule with a trigger contained in body.
func (r Rules) Reply(body string) (Rule, bool) {
	body = strings.ToLower(body)
	for _, rule := range r {
		for _, trigger := range rule.Triggers {
			trigger = strings.ToLower(strings.TrimSpace(trigger))
			if trigger == "" {
				continue
			}
			if strings.Contains(body, trigger) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}
