package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	sqlbuilder "github.com/huandu/go-sqlbuilder"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
)

const authorsSeparator = "\n"

// PushUpdatedFeed saves metadata and entries of a freshly fetched feed. Entries are matched with the stored ones by
// their keys: new entries are inserted and returned, known ones are updated in place.
func (d *Database) PushUpdatedFeed(
	ctx context.Context, f *feed.Feed, parsed *feed.ParsedFeed,
) (_ *feed.PushResult, retErr error) {
	feedID, err := parseID(f.ID)
	if err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			if err := tx.Rollback(); err != nil {
				logging.L(ctx).Errorf("Failed to rollback the transaction: %s.", err)
			}
		}
	}()

	if err := d.updateFeedMetadata(ctx, tx, feedID, parsed); err != nil {
		return nil, err
	}

	known, err := getEntryKeys(ctx, tx, feedID)
	if err != nil {
		return nil, err
	}

	var result feed.PushResult
	seen := make(map[string]struct{})

	for _, entry := range parsed.Entries {
		key := entry.Key()
		if _, ok := seen[key]; ok {
			logging.L(ctx).Debugf("Skipping duplicated %q entry.", key)
			continue
		}
		seen[key] = struct{}{}

		if _, ok := known[key]; ok {
			if err := updateEntry(ctx, tx, feedID, key, entry); err != nil {
				return nil, err
			}
			result.UpdatedEntries++
		} else {
			if err := insertEntry(ctx, tx, feedID, key, entry); err != nil {
				return nil, err
			}
			result.NewEntries = append(result.NewEntries, entry)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &result, nil
}

func (d *Database) updateFeedMetadata(ctx context.Context, tx *sql.Tx, feedID int64, parsed *feed.ParsedFeed) error {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("feeds")

	assignments := []string{
		ub.Assign("subtitle", parsed.Subtitle),
		ub.Assign("language", parsed.Language),
		ub.Assign("generator", parsed.Generator),
		ub.Assign("last_updated", toMillis(d.now())),
	}
	if parsed.Title != "" {
		assignments = append(assignments, ub.Assign("title", parsed.Title))
	}
	if parsed.Link != nil {
		assignments = append(assignments, ub.Assign("website_url", parsed.Link.String()))
	}

	query, args := ub.Set(assignments...).Where(ub.Equal("id", feedID)).Build()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	if count, err := result.RowsAffected(); err != nil {
		return err
	} else if count == 0 {
		return fmt.Errorf("%w: #%d", feed.ErrNotFound, feedID)
	}

	return nil
}

func getEntryKeys(ctx context.Context, tx *sql.Tx, feedID int64) (map[string]struct{}, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	query, args := sb.Select("entry_key").From("entries").Where(sb.Equal("feed_id", feedID)).Build()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}

	return keys, rows.Err()
}

func insertEntry(ctx context.Context, tx *sql.Tx, feedID int64, key string, entry *feed.Entry) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	query, args := ib.InsertInto("entries").
		Cols("feed_id", "entry_key", "entry_id", "title", "link", "authors", "summary", "content", "published", "updated").
		Values(
			feedID, key, entry.ID, entry.Title, linkString(entry.Link), joinAuthors(entry.Authors),
			entry.Summary, entry.Content, toMillis(entry.Published), toMillis(entry.Updated),
		).
		Build()

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func updateEntry(ctx context.Context, tx *sql.Tx, feedID int64, key string, entry *feed.Entry) error {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	query, args := ub.Update("entries").
		Set(
			ub.Assign("title", entry.Title),
			ub.Assign("link", linkString(entry.Link)),
			ub.Assign("authors", joinAuthors(entry.Authors)),
			ub.Assign("summary", entry.Summary),
			ub.Assign("content", entry.Content),
			ub.Assign("updated", toMillis(entry.Updated)),
		).
		Where(ub.Equal("feed_id", feedID), ub.Equal("entry_key", key)).
		Build()

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Entries returns stored entries of the feed, newest first.
func (d *Database) Entries(ctx context.Context, id string) ([]*feed.Entry, error) {
	feedID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	query, args := sb.
		Select("entry_id", "title", "link", "authors", "summary", "content", "published", "updated").
		From("entries").
		Where(sb.Equal("feed_id", feedID)).
		OrderBy("published DESC", "id").
		Build()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*feed.Entry
	for rows.Next() {
		var (
			entry              feed.Entry
			link, authors      string
			published, updated int64
		)

		if err := rows.Scan(
			&entry.ID, &entry.Title, &link, &authors, &entry.Summary, &entry.Content, &published, &updated,
		); err != nil {
			return nil, err
		}

		if link != "" {
			if entry.Link, err = url.Parse(link); err != nil {
				return nil, fmt.Errorf("got an invalid entry link: %w", err)
			}
		}

		if authors != "" {
			for _, name := range strings.Split(authors, authorsSeparator) {
				entry.Authors = append(entry.Authors, feed.Author{Name: name})
			}
		}

		entry.Published = fromMillis(published)
		entry.Updated = fromMillis(updated)

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func linkString(link *url.URL) string {
	if link == nil {
		return ""
	}
	return link.String()
}

func joinAuthors(authors []feed.Author) string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Name)
	}
	return strings.Join(names, authorsSeparator)
}
