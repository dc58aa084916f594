package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
)

var feedColumns = []string{
	"id", "url", "website_url", "title", "subtitle", "language", "generator", "last_updated", "favicon",
	"last_favicon_refresh", "update_interval", "hidden", "is_folder",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(row scanner) (*feed.Feed, error) {
	var (
		f                  feed.Feed
		id                 int64
		feedURL            string
		websiteURL         string
		lastUpdated        int64
		favicon            string
		lastFaviconRefresh int64
		updateInterval     int64
	)

	if err := row.Scan(
		&id, &feedURL, &websiteURL, &f.Title, &f.Subtitle, &f.Language, &f.Generator, &lastUpdated, &favicon,
		&lastFaviconRefresh, &updateInterval, &f.Hidden, &f.IsFolder,
	); err != nil {
		return nil, err
	}

	parsedURL, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("feed #%d has an invalid URL: %w", id, err)
	}

	if websiteURL != "" {
		if f.WebsiteURL, err = url.Parse(websiteURL); err != nil {
			return nil, fmt.Errorf("feed #%d has an invalid website URL: %w", id, err)
		}
	}

	f.ID = strconv.FormatInt(id, 10)
	f.URL = parsedURL
	f.LastUpdated = fromMillis(lastUpdated)
	f.Favicon = feed.Favicon(favicon)
	f.LastFaviconRefresh = fromMillis(lastFaviconRefresh)
	f.UpdateInterval = time.Duration(updateInterval) * time.Second

	return &f, nil
}

func parseID(id string) (int64, error) {
	value, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid feed ID: %q", feed.ErrNotFound, id)
	}
	return value, nil
}

func (d *Database) Feeds(ctx context.Context) ([]*feed.Feed, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	query, args := sb.Select(feedColumns...).From("feeds").OrderBy("id").Build()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []*feed.Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, f)
	}

	return feeds, rows.Err()
}

// GetFeed returns feed.ErrNotFound if the feed doesn't exist (for example, has been deleted while queued for update).
func (d *Database) GetFeed(ctx context.Context, id string) (*feed.Feed, error) {
	feedID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	query, args := sb.Select(feedColumns...).From("feeds").Where(sb.Equal("id", feedID)).Build()

	f, err := scanFeed(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%s", feed.ErrNotFound, id)
	}
	return f, err
}

func (d *Database) AddFeed(ctx context.Context, feedURL *url.URL, updateInterval time.Duration) (*feed.Feed, error) {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	query, args := ib.InsertInto("feeds").
		Cols("url", "update_interval").
		Values(feedURL.String(), int64(updateInterval/time.Second)).
		Build()

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to add %s feed: %w", feedURL, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return d.GetFeed(ctx, strconv.FormatInt(id, 10))
}

func (d *Database) DeleteFeed(ctx context.Context, id string) error {
	feedID, err := parseID(id)
	if err != nil {
		return err
	}

	builder := sqlbuilder.SQLite.NewDeleteBuilder()
	query, args := builder.DeleteFrom("feeds").Where(builder.Equal("id", feedID)).Build()

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	if count, err := result.RowsAffected(); err != nil {
		return err
	} else if count == 0 {
		return fmt.Errorf("%w: #%s", feed.ErrNotFound, id)
	}

	return nil
}

func (d *Database) ModifyFeed(ctx context.Context, modification feed.Modification) error {
	if modification.Empty() {
		return nil
	}

	feedID, err := parseID(modification.ID)
	if err != nil {
		return err
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("feeds")

	var assignments []string
	if title, ok := modification.Title.Get(); ok {
		assignments = append(assignments, ub.Assign("title", title))
	}
	if favicon, ok := modification.Favicon.Get(); ok {
		assignments = append(assignments, ub.Assign("favicon", string(favicon)))
	}
	if refreshTime, ok := modification.LastFaviconRefresh.Get(); ok {
		assignments = append(assignments, ub.Assign("last_favicon_refresh", toMillis(refreshTime)))
	}
	if interval, ok := modification.UpdateInterval.Get(); ok {
		assignments = append(assignments, ub.Assign("update_interval", int64(interval/time.Second)))
	}
	if hidden, ok := modification.Hidden.Get(); ok {
		assignments = append(assignments, ub.Assign("hidden", hidden))
	}

	query, args := ub.Set(assignments...).Where(ub.Equal("id", feedID)).Build()

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	if count, err := result.RowsAffected(); err != nil {
		return err
	} else if count == 0 {
		return fmt.Errorf("%w: #%s", feed.ErrNotFound, modification.ID)
	}

	return nil
}
