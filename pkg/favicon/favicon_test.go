package favicon

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/test/testutil"
	"github.com/KonishchevDmitry/feedsync/pkg/url"
)

var pngIcon = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x10\x00\x00\x00\x10\x08\x06\x00\x00\x00")

type website struct {
	lock     sync.Mutex
	requests []string
	server   *httptest.Server
}

func newWebsite(t *testing.T, pages map[string]string, icons map[string][]byte) *website {
	site := &website{}

	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.lock.Lock()
		site.requests = append(site.requests, r.URL.Path)
		site.lock.Unlock()

		if page, ok := pages[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(page))
		} else if icon, ok := icons[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(icon)
		} else {
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.server.Close)

	return site
}

func (s *website) url(path string) *url.URL {
	return url.MustParse(s.server.URL + path)
}

func (s *website) getRequests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.requests
}

func pngFavicon() feed.Favicon {
	return feed.Favicon("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngIcon))
}

func TestDefaultLocation(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, nil, map[string][]byte{"/favicon.ico": pngIcon})

	icon := NewResolver(time.Second).Resolve(testutil.Context(t), site.url("/blog/"))
	require.Equal(t, pngFavicon(), icon)
	require.Equal(t, []string{"/favicon.ico"}, site.getRequests())
}

func TestRelativeIconLink(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, map[string]string{
		"/blog/": `<html><head><link rel="shortcut icon" href="img/icon.png"></head><body></body></html>`,
	}, map[string][]byte{
		"/blog/img/icon.png": pngIcon,
	})

	icon := NewResolver(time.Second).Resolve(testutil.Context(t), site.url("/blog/"))
	require.Equal(t, pngFavicon(), icon)
	require.Equal(t, []string{"/favicon.ico", "/blog/", "/blog/img/icon.png"}, site.getRequests())
}

func TestIconLinkCase(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, map[string]string{
		"/": `<html><head><link rel="Shortcut Icon" href="/Icon.png"></head></html>`,
	}, map[string][]byte{
		"/Icon.png": pngIcon,
	})

	icon := NewResolver(time.Second).Resolve(testutil.Context(t), site.url("/"))
	require.Equal(t, pngFavicon(), icon)
	require.Equal(t, []string{"/favicon.ico", "/", "/Icon.png"}, site.getRequests())
}

func TestOriginPage(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, map[string]string{
		"/blog/": `<html><head><title>No icon</title></head></html>`,
		"/":      `<html><head><link rel="icon" type="image/png" href="/static/icon.png"></head></html>`,
	}, map[string][]byte{
		"/static/icon.png": pngIcon,
	})

	icon := NewResolver(time.Second).Resolve(testutil.Context(t), site.url("/blog/"))
	require.Equal(t, pngFavicon(), icon)
	require.Equal(t, []string{"/favicon.ico", "/blog/", "/", "/static/icon.png"}, site.getRequests())
}

func TestNoFavicon(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, map[string]string{
		"/": `<html><head></head></html>`,
	}, map[string][]byte{
		"/favicon.ico": {},
	})

	icon := NewResolver(time.Second).Resolve(testutil.Context(t), site.url("/"))
	require.Equal(t, feed.NoFavicon, icon)
	require.Equal(t, []string{"/favicon.ico", "/"}, site.getRequests())

	require.Equal(t, feed.NoFavicon, NewResolver(time.Second).Resolve(testutil.Context(t), nil))
}

func TestNotAnImage(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, nil, map[string][]byte{
		"/favicon.ico": []byte("<!DOCTYPE html><html><body>Not found</body></html>"),
	})

	icon := NewResolver(time.Second).Resolve(testutil.Context(t), site.url("/"))
	require.Equal(t, feed.NoFavicon, icon)
}

func TestNeedsRefresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	require.True(t, NeedsRefresh(&feed.Feed{}, DefaultRefreshInterval, now))
	require.False(t, NeedsRefresh(&feed.Feed{
		Favicon:            feed.NoFavicon,
		LastFaviconRefresh: now.Add(-time.Hour),
	}, DefaultRefreshInterval, now))
	require.True(t, NeedsRefresh(&feed.Feed{
		Favicon:            pngFavicon(),
		LastFaviconRefresh: now.Add(-15 * 24 * time.Hour),
	}, DefaultRefreshInterval, now))
}

type testDatabase struct {
	modifications []feed.Modification
}

func (d *testDatabase) ModifyFeed(ctx context.Context, modification feed.Modification) error {
	d.modifications = append(d.modifications, modification)
	return nil
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	site := newWebsite(t, nil, map[string][]byte{"/favicon.ico": pngIcon})

	var db testDatabase
	startTime := time.Now()

	icon, err := NewResolver(time.Second).Update(testutil.Context(t), &db, &feed.Feed{
		ID:         "1",
		URL:        site.url("/feed.xml"),
		WebsiteURL: site.url("/"),
	})
	require.NoError(t, err)
	require.Equal(t, pngFavicon(), icon)

	require.Len(t, db.modifications, 1)
	modification := db.modifications[0]
	require.Equal(t, "1", modification.ID)
	require.Equal(t, pngFavicon(), modification.Favicon.MustGet())
	require.False(t, modification.LastFaviconRefresh.MustGet().Before(startTime))
}
