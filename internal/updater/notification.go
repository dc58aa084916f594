package updater

import (
	"context"
	"fmt"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/dustin/go-humanize/english"

	"github.com/KonishchevDmitry/feedsync/pkg/parse"
)

const (
	notificationTitle    = "Feeds have been updated"
	notificationTitleLen = 35
)

// Emits a summary of the finished update cycle if any feed got new entries.
func (s *Scheduler) notify(ctx context.Context, updated map[string]int) {
	var newEntries int
	for _, count := range updated {
		newEntries += count
	}
	if newEntries == 0 {
		return
	}

	if !s.prefs.Get().ShowNotification {
		logging.L(ctx).Debugf("Notifications are disabled. Skipping the update summary.")
		return
	}

	notification := Notification{
		Title:         notificationTitle,
		FeedCount:     len(updated),
		NewEntryCount: newEntries,
	}

	if len(updated) == 1 {
		for id := range updated {
			if f, err := s.db.GetFeed(ctx, id); err == nil {
				notification.SingleFeedTitle = f.Name()
			} else {
				logging.L(ctx).Debugf("Unable to get #%s feed: %s.", id, err)
			}
		}
	}

	items := english.Plural(newEntries, "new item", "new items")
	if notification.SingleFeedTitle != "" {
		notification.Message = fmt.Sprintf("%s: %s",
			parse.Truncate(notification.SingleFeedTitle, notificationTitleLen), items)
	} else {
		notification.Message = fmt.Sprintf("%s in %s", items, english.Plural(len(updated), "feed", "feeds"))
	}

	s.notifier.Notify(ctx, notification)
}
