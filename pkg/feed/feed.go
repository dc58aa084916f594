package feed

import (
	"errors"
	"net/url"
	"time"

	"github.com/samber/mo"
)

var ErrNotFound = errors.New("the feed doesn't exist")

// Favicon is a data URL of the feed's website icon, NoFavicon if the website has none or empty if it has never been
// checked.
type Favicon string

const NoFavicon Favicon = "no-favicon"

func (f Favicon) Checked() bool {
	return f != ""
}

func (f Favicon) Found() bool {
	return f != "" && f != NoFavicon
}

// Feed is a subscription as it's stored in the database.
type Feed struct {
	ID         string
	URL        *url.URL
	WebsiteURL *url.URL

	Title     string
	Subtitle  string
	Language  string
	Generator string

	LastUpdated        time.Time
	Favicon            Favicon
	LastFaviconRefresh time.Time

	// Zero means the global update interval
	UpdateInterval time.Duration

	Hidden   bool
	IsFolder bool
}

func (f *Feed) Name() string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL.String()
}

// Updatable reports whether the feed takes part in automatic and bulk updates.
func (f *Feed) Updatable() bool {
	return !f.Hidden && !f.IsFolder
}

type Modification struct {
	ID                 string
	Title              mo.Option[string]
	Favicon            mo.Option[Favicon]
	LastFaviconRefresh mo.Option[time.Time]
	UpdateInterval     mo.Option[time.Duration]
	Hidden             mo.Option[bool]
}

func (m *Modification) Empty() bool {
	return m.Title.IsAbsent() && m.Favicon.IsAbsent() && m.LastFaviconRefresh.IsAbsent() &&
		m.UpdateInterval.IsAbsent() && m.Hidden.IsAbsent()
}

// PushResult describes what has changed in the storage after saving a freshly fetched feed.
type PushResult struct {
	NewEntries     []*Entry
	UpdatedEntries int
}
