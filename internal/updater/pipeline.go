package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/internal/util"
	"github.com/KonishchevDmitry/feedsync/pkg/favicon"
	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/fetch"
)

// Runs the fetch and persist pipeline for the feed isolating all its failures. Returns the number of new entries.
func (s *Scheduler) runPipeline(ctx context.Context, id string) int {
	ctx = fetch.WithContext(ctx, s.fetchDuration)

	var (
		f        *feed.Feed
		result   *feed.PushResult
		err      error
		panicErr error
	)

	startTime := time.Now()
	func() {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				panicErr = fmt.Errorf("the update has panicked: %v\n%s", err, bytes.TrimRight(stack, "\n"))
			}
		}()
		f, result, err = s.pipeline(ctx, id)
	}()
	s.updateDuration.Observe(time.Since(startTime).Seconds())

	name := fmt.Sprintf("#%s", id)
	if f != nil {
		name = fmt.Sprintf("%q", f.Name())
	}

	if panicErr != nil {
		logging.L(ctx).Errorf("Failed to update %s feed: %s", name, panicErr)
		s.updateStatus.WithLabelValues(updateStatusPanic).Inc()
		return 0
	} else if errors.Is(err, feed.ErrNotFound) {
		logging.L(ctx).Infof("%s feed has been deleted during the update. Skipping it.", name)
		s.updateStatus.WithLabelValues(updateStatusDeleted).Inc()
		return 0
	} else if util.IsTemporaryError(err) {
		logging.L(ctx).Warnf("Failed to update %s feed: %s.", name, err)
		s.updateStatus.WithLabelValues(updateStatusUnavailable).Inc()
		return 0
	} else if err != nil {
		logging.L(ctx).Errorf("Failed to update %s feed: %s.", name, err)
		s.updateStatus.WithLabelValues(updateStatusError).Inc()
		return 0
	}

	s.updateStatus.WithLabelValues(updateStatusSuccess).Inc()
	logging.L(ctx).Infof("%s feed has been updated: %d new entries, %d updated entries.",
		name, len(result.NewEntries), result.UpdatedEntries)

	return len(result.NewEntries)
}

func (s *Scheduler) pipeline(ctx context.Context, id string) (*feed.Feed, *feed.PushResult, error) {
	f, err := s.db.GetFeed(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	prefs := s.prefs.Get()
	logging.L(ctx).Infof("Updating %q feed...", f.Name())

	// The favicon is refreshed even if the feed itself is currently unavailable
	defer func() {
		if favicon.NeedsRefresh(f, prefs.FaviconRefreshInterval, s.now()) {
			s.waitGroup.Go(func() {
				s.refreshFavicon(ctx, f)
			})
		}
	}()

	parsed, err := s.fetch(ctx, f.URL, fetch.Timeout(prefs.FetchTimeout))
	if err != nil {
		return f, nil, err
	}

	result, err := s.db.PushUpdatedFeed(ctx, f, parsed)
	if err != nil {
		return f, nil, fmt.Errorf("unable to save the feed: %w", err)
	}

	if parsed.Link != nil {
		f.WebsiteURL = parsed.Link
	}

	return f, result, nil
}

func (s *Scheduler) refreshFavicon(ctx context.Context, f *feed.Feed) {
	logging.L(ctx).Debugf("Refreshing favicon of %q feed...", f.Name())

	icon, err := s.favicons.Update(ctx, s.db, f)
	if err != nil {
		logging.L(ctx).Errorf("Failed to refresh favicon of %q feed: %s.", f.Name(), err)
		s.faviconResults.WithLabelValues(faviconError).Inc()
	} else if icon.Found() {
		s.faviconResults.WithLabelValues(faviconFound).Inc()
	} else {
		s.faviconResults.WithLabelValues(faviconMissing).Inc()
	}
}
