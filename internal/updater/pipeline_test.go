package updater_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/feedsync/internal/config"
	"github.com/KonishchevDmitry/feedsync/internal/database"
	"github.com/KonishchevDmitry/feedsync/internal/updater"
	"github.com/KonishchevDmitry/feedsync/pkg/favicon"
	"github.com/KonishchevDmitry/feedsync/pkg/test"
	"github.com/KonishchevDmitry/feedsync/pkg/test/testutil"
)

type notifier chan updater.Notification

func (n notifier) Notify(_ context.Context, notification updater.Notification) {
	n <- notification
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	ctx := testutil.Context(t)

	documents := make(map[string]test.Document)
	website := test.NewWebsite(t, documents)

	documents["/"] = test.Document{ContentType: "text/html", Body: heredoc.Doc(`
		<html><head><link rel="shortcut icon" href="/static/icon.png"></head><body></body></html>
	`)}
	documents["/static/icon.png"] = test.Document{ContentType: "image/png", Body: "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"}
	documents["/feed.xml"] = test.Document{ContentType: "application/rss+xml", Body: heredoc.Docf(`
		<?xml version="1.0" encoding="UTF-8"?>
		<rss version="2.0">
			<channel>
				<title>Site</title>
				<link>%s</link>
				<item><title>First</title><guid>1</guid></item>
				<item><title>Second</title><guid>2</guid></item>
			</channel>
		</rss>
	`, website.URL("/"))}
	documents["/broken.xml"] = test.Document{ContentType: "text/html", Body: heredoc.Doc(`
		<html><body><p>Not a feed</p></body></html>
	`)}

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "feeds.db"))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	good, err := db.AddFeed(ctx, website.URL("/feed.xml"), 0)
	require.NoError(t, err)

	broken, err := db.AddFeed(ctx, website.URL("/broken.xml"), 0)
	require.NoError(t, err)

	c := config.Default()
	c.Update.DefaultFetchDelay = 0

	notifications := make(notifier, 10)
	scheduler := updater.New(db, config.NewPrefs(c),
		updater.WithNotifier(notifications),
		updater.WithFaviconUpdater(favicon.NewResolver(5*time.Second)))
	defer scheduler.Close(ctx)

	scheduler.Update(ctx, []string{broken.ID, good.ID}, updater.UpdateOptions{})
	require.NoError(t, scheduler.Wait(ctx))

	notification := <-notifications
	require.Equal(t, "Site: 2 new items", notification.Message)

	scheduler.Update(ctx, []string{good.ID}, updater.UpdateOptions{})
	require.NoError(t, scheduler.Wait(ctx))

	scheduler.Close(ctx)
	require.Empty(t, notifications)

	entries, err := db.Entries(ctx, good.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	updated, err := db.GetFeed(ctx, good.ID)
	require.NoError(t, err)
	require.Equal(t, "Site", updated.Title)
	require.Equal(t, website.URL("/"), updated.WebsiteURL)
	require.True(t, updated.Favicon.Found())
	require.True(t, strings.HasPrefix(string(updated.Favicon), "data:image/png;base64,"))

	entries, err = db.Entries(ctx, broken.ID)
	require.NoError(t, err)
	require.Empty(t, entries)

	notUpdated, err := db.GetFeed(ctx, broken.ID)
	require.NoError(t, err)
	require.True(t, notUpdated.LastUpdated.IsZero())
	require.Equal(t, updater.Status{Active: false, Progress: 1, Underway: []string{}}, scheduler.Status())
}
