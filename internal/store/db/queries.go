package db

import (
	"context"
)

type SeenItem struct {
	Source    string
	ItemID    string
	Subreddit string
	Title     string
	Link      string
	Keywords  string
	SeenAt    int64
}

type Reply struct {
	MessageID string
	Author    string
	Rule      string
	Reply     string
	RepliedAt int64
}

type Publication struct {
	ID          int64
	Subreddit   string
	Title       string
	Url         string
	Method      string
	Status      string
	PublishedAt int64
}

const insertSeenItem = `-- name: InsertSeenItem :execrows
insert or ignore into seen_items (source, item_id, subreddit, title, link, keywords, seen_at)
values (?, ?, ?, ?, ?, ?, ?)
`

type InsertSeenItemParams struct {
	Source    string
	ItemID    string
	Subreddit string
	Title     string
	Link      string
	Keywords  string
	SeenAt    int64
}

func (q *Queries) InsertSeenItem(ctx context.Context, arg InsertSeenItemParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertSeenItem,
		arg.Source,
		arg.ItemID,
		arg.Subreddit,
		arg.Title,
		arg.Link,
		arg.Keywords,
		arg.SeenAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countReplies = `-- name: CountReplies :one
select count(*) from replies where message_id = ?
`

func (q *Queries) CountReplies(ctx context.Context, messageID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countReplies, messageID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertReply = `-- name: InsertReply :exec
insert or replace into replies (message_id, author, rule, reply, replied_at)
values (?, ?, ?, ?, ?)
`

type InsertReplyParams struct {
	MessageID string
	Author    string
	Rule      string
	Reply     string
	RepliedAt int64
}

func (q *Queries) InsertReply(ctx context.Context, arg InsertReplyParams) error {
	_, err := q.db.ExecContext(ctx, insertReply,
		arg.MessageID,
		arg.Author,
		arg.Rule,
		arg.Reply,
		arg.RepliedAt,
	)
	return err
}

const insertPublication = `-- name: InsertPublication :exec
insert into publications (subreddit, title, url, method, status, published_at)
values (?, ?, ?, ?, ?, ?)
`

type InsertPublicationParams struct {
	Subreddit   string
	Title       string
	Url         string
	Method      string
	Status      string
	PublishedAt int64
}

func (q *Queries) InsertPublication(ctx context.Context, arg InsertPublicationParams) error {
	_, err := q.db.ExecContext(ctx, insertPublication,
		arg.Subreddit,
		arg.Title,
		arg.Url,
		arg.Method,
		arg.Status,
		arg.PublishedAt,
	)
	return err
}

const getPublicationsSince = `-- name: GetPublicationsSince :many
select id, subreddit, title, url, method, status, published_at from publications
where subreddit = ? and published_at >= ?
  and status in ('submitted', 'unverified')
order by published_at desc
`

type GetPublicationsSinceParams struct {
	Subreddit string
	After     int64
}

func (q *Queries) GetPublicationsSince(ctx context.Context, arg GetPublicationsSinceParams) ([]Publication, error) {
	rows, err := q.db.QueryContext(ctx, getPublicationsSince, arg.Subreddit, arg.After)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPublications(rows)
}

const getRecentPublications = `-- name: GetRecentPublications :many
select id, subreddit, title, url, method, status, published_at from publications
order by published_at desc, id desc
limit ?
`

func (q *Queries) GetRecentPublications(ctx context.Context, limit int64) ([]Publication, error) {
	rows, err := q.db.QueryContext(ctx, getRecentPublications, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPublications(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

func scanPublications(rows rowScanner) ([]Publication, error) {
	var items []Publication
	for rows.Next() {
		var i Publication
		if err := rows.Scan(
			&i.ID,
			&i.Subreddit,
			&i.Title,
			&i.Url,
			&i.Method,
			&i.Status,
			&i.PublishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
