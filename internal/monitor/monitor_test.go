package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"redditbot/internal/components/telemetry"
	"redditbot/internal/feed"
	"redditbot/internal/match"
	"redditbot/internal/reddit"
	"redditbot/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	posts []reddit.Submission
	err   error
}

func (f fakeLister) New(ctx context.Context, subreddit string, limit int) ([]reddit.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.posts) > limit {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

type fakeFetcher struct {
	entries []feed.Entry
}

func (f fakeFetcher) Fetch(ctx context.Context, subreddit string) ([]feed.Entry, error) {
	return f.entries, nil
}

func openStore(t *testing.T) store.Store {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScanAPI(t *testing.T) {
	source := APISource{Client: fakeLister{posts: []reddit.Submission{
		{Name: "t3_a", Title: "How to combine workbooks", URL: "https://reddit.com/a"},
		{Name: "t3_b", Title: "Conditional formatting", Selftext: "colors"},
		{Name: "t3_c", Title: "Help", Selftext: "My CSV is messy"},
	}}}
	scanner := NewScanner(source, match.DefaultKeywords, nil, &telemetry.TestAPI{})

	report, err := scanner.Scan(context.Background(), "excel", 10)
	require.NoError(t, err)
	require.Equal(t, 3, report.Scanned)
	require.Equal(t, "api", report.Source)
	require.Len(t, report.Matches, 2)
	require.Equal(t, "t3_a", report.Matches[0].ID)
	require.Equal(t, []string{"combine"}, report.Matches[0].Keywords)
	require.Equal(t, []string{"csv", "messy"}, report.Matches[1].Keywords)
	require.Len(t, report.New(), 2)
}

func TestScanRSSWithStore(t *testing.T) {
	published := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	source := RSSSource{Fetcher: fakeFetcher{entries: []feed.Entry{
		{ID: "t3_a", Title: "Clean data", Text: "", Link: "https://reddit.com/a", Published: published},
		{ID: "t3_b", Title: "Other", Text: "excel question"},
		{ID: "t3_c", Title: "Nothing here"},
	}}}
	s := openStore(t)
	scanner := NewScanner(source, match.DefaultKeywords, s, &telemetry.TestAPI{})
	ctx := context.Background()

	report, err := scanner.Scan(ctx, "excel", 10)
	require.NoError(t, err)
	require.Len(t, report.Matches, 2)
	require.Len(t, report.New(), 2)
	require.Equal(t, published, report.Matches[0].Published)

	report, err = scanner.Scan(ctx, "excel", 10)
	require.NoError(t, err)
	require.Len(t, report.Matches, 2)
	require.Empty(t, report.New(), "second scan only sees already reported posts")
}

func TestScanRSSLimit(t *testing.T) {
	source := RSSSource{Fetcher: fakeFetcher{entries: []feed.Entry{
		{ID: "1", Title: "csv"},
		{ID: "2", Title: "csv"},
		{ID: "3", Title: "csv"},
	}}}
	items, err := source.Items(context.Background(), "excel", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestScanError(t *testing.T) {
	tel := &telemetry.TestAPI{}
	scanner := NewScanner(APISource{Client: fakeLister{err: errors.New("boom")}}, match.DefaultKeywords, nil, tel)

	_, err := scanner.Scan(context.Background(), "excel", 10)
	require.ErrorContains(t, err, "scan r/excel via api: boom")
	require.Equal(t, []string{"monitor: " + report_scanner_scan}, tel.IDs("broken"))
}

type fakeInbox struct {
	unread   []reddit.Message
	replyErr error
	replied  []string
	read     []string
}

func (f *fakeInbox) Unread(ctx context.Context, limit int) ([]reddit.Message, error) {
	return f.unread, nil
}

func (f *fakeInbox) Reply(ctx context.Context, fullname, text string) error {
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replied = append(f.replied, fullname)
	return nil
}

func (f *fakeInbox) MarkRead(ctx context.Context, fullnames ...string) error {
	f.read = append(f.read, fullnames...)
	return nil
}

var testMessages = []reddit.Message{
	{Name: "t4_1", Author: "bob", Body: "Can I get the link?"},
	{Name: "t4_2", Author: "carol", Body: "Nice work"},
	{Name: "t4_3", Author: "dave", Body: "How much does it COST"},
}

func TestResponderDryRun(t *testing.T) {
	inbox := &fakeInbox{unread: testMessages}
	responder := NewResponder(inbox, match.DefaultRules, nil, &telemetry.TestAPI{})

	plans, err := responder.Check(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	require.Equal(t, PlanPlanned, plans[0].Status)
	require.Equal(t, "link", plans[0].Rule)
	require.Equal(t, PlanNoRule, plans[1].Status)
	require.Empty(t, plans[1].Reply)
	require.Equal(t, "price", plans[2].Rule)

	require.Empty(t, inbox.replied, "nothing is sent without send")
	require.Empty(t, inbox.read)
}

func TestResponderSend(t *testing.T) {
	inbox := &fakeInbox{unread: testMessages}
	s := openStore(t)
	responder := NewResponder(inbox, match.DefaultRules, s, &telemetry.TestAPI{})
	ctx := context.Background()

	plans, err := responder.Check(ctx, true)
	require.NoError(t, err)
	require.Equal(t, PlanSent, plans[0].Status)
	require.Equal(t, PlanNoRule, plans[1].Status)
	require.Equal(t, PlanSent, plans[2].Status)
	require.Equal(t, []string{"t4_1", "t4_3"}, inbox.replied)
	require.Equal(t, []string{"t4_1", "t4_3"}, inbox.read)

	plans, err = responder.Check(ctx, true)
	require.NoError(t, err)
	require.Equal(t, PlanSkipped, plans[0].Status)
	require.Equal(t, PlanSkipped, plans[2].Status)
	require.Len(t, inbox.replied, 2, "already answered messages are never answered twice")
	require.Equal(t, []string{"t4_1", "t4_3", "t4_1", "t4_3"}, inbox.read, "answered messages still get marked read")
}

type failingReplyStore struct{}

func (failingReplyStore) HasReplied(ctx context.Context, messageId string) (bool, error) {
	return false, errors.New("database is locked")
}

func (failingReplyStore) RecordReply(ctx context.Context, reply store.Reply) error {
	return errors.New("database is locked")
}

func TestResponderStoreFailure(t *testing.T) {
	inbox := &fakeInbox{unread: testMessages}
	tel := &telemetry.TestAPI{}
	responder := NewResponder(inbox, match.DefaultRules, failingReplyStore{}, tel)

	plans, err := responder.Check(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, PlanFailed, plans[0].Status)
	require.ErrorContains(t, plans[0].Err, "check reply history: database is locked")
	require.Equal(t, PlanNoRule, plans[1].Status)
	require.Equal(t, PlanFailed, plans[2].Status)
	require.Empty(t, inbox.replied, "nothing is sent when reply history is unknown")
	require.Empty(t, inbox.read)
	require.Equal(
		t,
		[]string{"monitor: " + report_responder_record, "monitor: " + report_responder_record},
		tel.IDs("broken"),
	)
}

func TestResponderReplyFailure(t *testing.T) {
	inbox := &fakeInbox{unread: testMessages[:1], replyErr: reddit.ErrRateLimited}
	tel := &telemetry.TestAPI{}
	responder := NewResponder(inbox, match.DefaultRules, nil, tel)

	plans, err := responder.Check(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, PlanFailed, plans[0].Status)
	require.ErrorIs(t, plans[0].Err, reddit.ErrRateLimited)
	require.Empty(t, inbox.read)
	require.Equal(t, []string{"monitor: " + report_responder_reply}, tel.IDs("broken"))
}
