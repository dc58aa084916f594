package updater

import (
	"context"
	"net/url"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/internal/config"
	"github.com/KonishchevDmitry/feedsync/pkg/favicon"
	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/fetch"
)

type Database interface {
	Feeds(ctx context.Context) ([]*feed.Feed, error)
	GetFeed(ctx context.Context, id string) (*feed.Feed, error)
	ModifyFeed(ctx context.Context, modification feed.Modification) error
	PushUpdatedFeed(ctx context.Context, f *feed.Feed, parsed *feed.ParsedFeed) (*feed.PushResult, error)
}

type Prefs interface {
	Get() config.Preferences
	SetLastUpdateTime(value time.Time)
}

// Comm receives the scheduler status after every queue mutation.
type Comm interface {
	BroadcastStatus(status Status)
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification)
}

type FetchFunc func(ctx context.Context, url *url.URL, options ...fetch.Option) (*feed.ParsedFeed, error)

type FaviconUpdater interface {
	Update(ctx context.Context, db favicon.Database, f *feed.Feed) (feed.Favicon, error)
}

type Status struct {
	Active   bool     `json:"active"`
	Progress float64  `json:"progress"`
	Underway []string `json:"underway"`
}

type Notification struct {
	Title           string `json:"title"`
	Message         string `json:"message"`
	FeedCount       int    `json:"feedCount"`
	NewEntryCount   int    `json:"newEntryCount"`
	SingleFeedTitle string `json:"singleFeedTitle,omitempty"`
}

type UpdateOptions struct {
	// Background requests are served after all interactive ones and with a longer throttling delay
	Background bool
}

type Option func(o *options)

type options struct {
	comm     Comm
	notifier Notifier
	fetch    FetchFunc
	favicons FaviconUpdater
	now      func() time.Time
	timer    func(delay time.Duration) <-chan time.Time
}

func WithComm(comm Comm) Option {
	return func(o *options) {
		o.comm = comm
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

func WithFetcher(fetch FetchFunc) Option {
	return func(o *options) {
		o.fetch = fetch
	}
}

func WithFaviconUpdater(favicons FaviconUpdater) Option {
	return func(o *options) {
		o.favicons = favicons
	}
}

func makeOptions(opts []Option) options {
	options := options{
		comm:     nopComm{},
		notifier: LogNotifier{},
		fetch:    fetch.Feed,
		favicons: favicon.NewResolver(favicon.DefaultTimeout),
		now:      time.Now,
		timer:    time.After,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type nopComm struct{}

func (nopComm) BroadcastStatus(Status) {
}

// LogNotifier is a Notifier for headless runs.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, notification Notification) {
	logging.L(ctx).Infof("%s: %s.", notification.Title, notification.Message)
}
