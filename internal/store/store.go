// Package store persists what the bot has already seen, answered and
// published so repeated runs do not act twice.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"redditbot/internal/store/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	qry *db.Queries
	now func() time.Time
}

// Open opens (and migrates) a database. `libsql://` and `https://` DSNs are
// served by a remote libsql server, anything else is a local sqlite path.
func Open(dsn string) (Store, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "https://") {
		driver = "libsql"
	} else if dsn != ":memory:" {
		err := os.MkdirAll(filepath.Dir(dsn), 0777)
		if err != nil {
			return Store{}, err
		}
	}

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return Store{}, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single connection keeps `:memory:` databases alive across calls
		database.SetMaxOpenConns(1)
	}
	_, err = database.Exec(db.Schema)
	if err != nil {
		database.Close()
		return Store{}, fmt.Errorf("migrate: %w", err)
	}
	return NewStore(database), nil
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
		now: time.Now,
	}
}

func (s Store) Close() error {
	return s.db.Close()
}

type SeenItem struct {
	Source    string
	ID        string
	Subreddit string
	Title     string
	Link      string
	Keywords  []string
}

// MarkSeen records an item, isNew is false when it had already been recorded.
func (s Store) MarkSeen(ctx context.Context, item SeenItem) (isNew bool, err error) {
	affected, err := s.qry.InsertSeenItem(ctx, db.InsertSeenItemParams{
		Source:    item.Source,
		ItemID:    item.ID,
		Subreddit: item.Subreddit,
		Title:     item.Title,
		Link:      item.Link,
		Keywords:  strings.Join(item.Keywords, ","),
		SeenAt:    s.now().Unix(),
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type Reply struct {
	MessageID string
	Author    string
	Rule      string
	Reply     string
}

func (s Store) HasReplied(ctx context.Context, messageId string) (bool, error) {
	count, err := s.qry.CountReplies(ctx, messageId)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s Store) RecordReply(ctx context.Context, reply Reply) error {
	return s.qry.InsertReply(ctx, db.InsertReplyParams{
		MessageID: reply.MessageID,
		Author:    reply.Author,
		Rule:      reply.Rule,
		Reply:     reply.Reply,
		RepliedAt: s.now().Unix(),
	})
}

type Publication struct {
	Subreddit   string
	Title       string
	URL         string
	Method      string
	Status      string
	PublishedAt time.Time
}

func (s Store) RecordPublication(ctx context.Context, p Publication) error {
	at := p.PublishedAt
	if at.IsZero() {
		at = s.now()
	}
	return s.qry.InsertPublication(ctx, db.InsertPublicationParams{
		Subreddit:   strings.ToLower(p.Subreddit),
		Title:       p.Title,
		Url:         p.URL,
		Method:      p.Method,
		Status:      p.Status,
		PublishedAt: at.Unix(),
	})
}

func publicationFromRow(row db.Publication) Publication {
	return Publication{
		Subreddit:   row.Subreddit,
		Title:       row.Title,
		URL:         row.Url,
		Method:      row.Method,
		Status:      row.Status,
		PublishedAt: time.Unix(row.PublishedAt, 0),
	}
}

// PublicationsSince lists publications to a subreddit at or after `since`
// that may have gone up (submitted or unverified), newest first.
func (s Store) PublicationsSince(ctx context.Context, subreddit string, since time.Time) ([]Publication, error) {
	rows, err := s.qry.GetPublicationsSince(ctx, db.GetPublicationsSinceParams{
		Subreddit: strings.ToLower(subreddit),
		After:     since.Unix(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]Publication, len(rows))
	for i, r := range rows {
		out[i] = publicationFromRow(r)
	}
	return out, nil
}

// Publications lists the most recent publications, newest first.
func (s Store) Publications(ctx context.Context, limit int) ([]Publication, error) {
	rows, err := s.qry.GetRecentPublications(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]Publication, len(rows))
	for i, r := range rows {
		out[i] = publicationFromRow(r)
	}
	return out, nil
}
