package favicon

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/mo"

	"github.com/KonishchevDmitry/feedsync/pkg/cache"
	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/fetch"
	urlutil "github.com/KonishchevDmitry/feedsync/pkg/url"
)

const (
	DefaultTimeout         = 25 * time.Second
	DefaultRefreshInterval = 14 * 24 * time.Hour

	iconSelector = `link[rel~="icon" i]`
)

var defaultLocation = &url.URL{Path: "/favicon.ico"}

// NeedsRefresh reports whether the feed's favicon has never been checked or the last check is too old.
func NeedsRefresh(f *feed.Feed, refreshInterval time.Duration, now time.Time) bool {
	return !f.Favicon.Checked() || now.After(f.LastFaviconRefresh.Add(refreshInterval))
}

type Database interface {
	ModifyFeed(ctx context.Context, modification feed.Modification) error
}

// Resolver discovers website icons and embeds them as data URLs.
type Resolver struct {
	timeout time.Duration
	pages   *cache.Cache[*goquery.Document]
}

func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		timeout: timeout,
		pages:   cache.New[*goquery.Document](10*time.Minute, 100),
	}
}

// Resolve tries the conventional /favicon.ico location, then an icon declared by the website page, then an icon
// declared by the site's root page. It returns feed.NoFavicon if all of them fail.
func (r *Resolver) Resolve(ctx context.Context, website *url.URL) feed.Favicon {
	if website == nil {
		logging.L(ctx).Debugf("The feed has no website URL. Skipping favicon discovery.")
		return feed.NoFavicon
	}

	if icon, ok := r.download(ctx, website.ResolveReference(defaultLocation)).Get(); ok {
		return icon
	}

	if icon, ok := r.fromPage(ctx, website).Get(); ok {
		return icon
	}

	if origin := urlutil.Origin(website); origin.String() != website.String() {
		if icon, ok := r.fromPage(ctx, origin).Get(); ok {
			return icon
		}
	}

	logging.L(ctx).Debugf("%s has no favicon.", website)
	return feed.NoFavicon
}

// Update resolves favicon of the feed's website and saves it. The refresh time is stamped whether or not an icon has
// been found, so websites without icons aren't polled on every update.
func (r *Resolver) Update(ctx context.Context, db Database, f *feed.Feed) (feed.Favicon, error) {
	icon := r.Resolve(ctx, f.WebsiteURL)

	if err := db.ModifyFeed(ctx, feed.Modification{
		ID:                 f.ID,
		Favicon:            mo.Some(icon),
		LastFaviconRefresh: mo.Some(time.Now()),
	}); err != nil {
		return icon, fmt.Errorf("unable to save favicon of %q feed: %w", f.Name(), err)
	}

	return icon, nil
}

func (r *Resolver) fromPage(ctx context.Context, page *url.URL) mo.Option[feed.Favicon] {
	doc, err := r.pages.Cached(ctx, page, func(ctx context.Context, url *url.URL) (*goquery.Document, error) {
		return fetch.HTML(ctx, url, fetch.Timeout(r.timeout))
	})
	if err != nil {
		logging.L(ctx).Debugf("Unable to find favicon on the page: %s.", err)
		return mo.None[feed.Favicon]()
	}

	href, ok := doc.Find(iconSelector).First().Attr("href")
	if !ok {
		logging.L(ctx).Debugf("%s doesn't declare a favicon.", page)
		return mo.None[feed.Favicon]()
	}

	iconURL, err := urlutil.Resolve(page, href)
	if err != nil {
		logging.L(ctx).Debugf("%s declares an invalid favicon: %s.", page, err)
		return mo.None[feed.Favicon]()
	}

	return r.download(ctx, iconURL)
}

func (r *Resolver) download(ctx context.Context, iconURL *url.URL) mo.Option[feed.Favicon] {
	blob, err := fetch.Bytes(ctx, iconURL, fetch.Timeout(r.timeout))
	if err != nil {
		logging.L(ctx).Debugf("Unable to download favicon: %s.", err)
		return mo.None[feed.Favicon]()
	} else if len(blob.Data) == 0 {
		logging.L(ctx).Debugf("Got an empty favicon from %s.", iconURL)
		return mo.None[feed.Favicon]()
	}

	mediaType := blob.MediaType
	if !strings.HasPrefix(mediaType, "image/") {
		// Servers often return icons as application/octet-stream and HTML error pages with 200 status
		detected := mimetype.Detect(blob.Data).String()
		if !strings.HasPrefix(detected, "image/") {
			logging.L(ctx).Debugf("%s is not an image (%s).", iconURL, detected)
			return mo.None[feed.Favicon]()
		}
		mediaType = detected
	}

	logging.L(ctx).Debugf("Got %s favicon from %s.", mediaType, iconURL)
	return mo.Some(feed.Favicon("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(blob.Data)))
}
