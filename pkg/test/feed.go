package test

import (
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/fetch"
	"github.com/KonishchevDmitry/feedsync/pkg/test/testutil"
)

// Feed fetches the feed and checks that it has been parsed into a sane value.
func Feed(t *testing.T, url *url.URL, opts ...FeedOption) *feed.ParsedFeed {
	var options options
	for _, opt := range opts {
		opt(&options)
	}

	ctx := testutil.Context(t)
	ctx = fetch.WithContext(ctx, prometheus.NewHistogram(prometheus.HistogramOpts{}))

	parsed, err := fetch.Feed(ctx, url)
	require.NoError(t, err)
	require.NotEmpty(t, parsed.Title)

	if !options.mayBeEmpty {
		require.NotEmpty(t, parsed.Entries)
	}

	keys := make(map[string]struct{})
	for _, entry := range parsed.Entries {
		require.True(t, entry.Title != "" || entry.Link != nil, "%+v", entry)

		key := entry.Key()
		require.NotContains(t, keys, key)
		keys[key] = struct{}{}
	}

	return parsed
}

type options struct {
	mayBeEmpty bool
}

type FeedOption func(o *options)

func MayBeEmpty() FeedOption {
	return func(o *options) {
		o.mayBeEmpty = true
	}
}
