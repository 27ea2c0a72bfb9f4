package telemetry

import (
	"fmt"
	"sync"
)

// Report is a single report captured by TestAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// TestAPI records every report so tests can assert on what a component
// reported.
type TestAPI struct {
	mutex   sync.Mutex
	Reports []Report
}

func (t *TestAPI) add(kind, id string, params []any) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.Reports = append(t.Reports, Report{Kind: kind, ID: id, Params: params})
}

func (t *TestAPI) ReportBroken(id string, params ...any) {
	t.add("broken", id, params)
}

func (t *TestAPI) ReportWarning(id string, params ...any) {
	t.add("warning", id, params)
}

func (t *TestAPI) ReportDebug(msg string, params ...any) {
	t.add("debug", msg, params)
}

func (t *TestAPI) ReportCount(id string, count int64) {
	t.add("count", id, []any{count})
}

// IDs returns the ids of every report of the given kind, in order.
func (t *TestAPI) IDs(kind string) []string {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	var out []string
	for _, r := range t.Reports {
		if r.Kind == kind {
			out = append(out, r.ID)
		}
	}
	return out
}

func (r Report) String() string {
	return fmt.Sprintf("%s %s %v", r.Kind, r.ID, r.Params)
}
