package updater

import (
	"context"
	"fmt"

	logging "github.com/KonishchevDmitry/go-easy-logging"
)

// Start starts the periodic sweep which schedules background update of all due feeds.
func (s *Scheduler) Start(ctx context.Context) {
	s.startTime.SetToCurrentTime()
	s.waitGroup.Go(func() {
		s.sweeper(ctx)
	})
}

func (s *Scheduler) sweeper(ctx context.Context) {
	if !s.sleep(s.prefs.Get().StartupDelay) {
		return
	}

	for {
		if err := s.sweep(ctx); err != nil {
			logging.L(ctx).Errorf("Failed to schedule periodic update: %s.", err)
		}

		if !s.sleep(s.prefs.Get().SweepInterval) {
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) error {
	now := s.now()
	prefs := s.prefs.Get()

	globalUpdate := prefs.EnableAutoUpdate && now.After(prefs.LastUpdateTime.Add(prefs.Interval))
	if globalUpdate {
		s.prefs.SetLastUpdateTime(now)
	}

	feeds, err := s.db.Feeds(ctx)
	if err != nil {
		return fmt.Errorf("unable to get the list of feeds: %w", err)
	}

	var due []string
	for _, f := range feeds {
		if !f.Updatable() {
			continue
		}

		var update bool
		if f.UpdateInterval == 0 {
			update = globalUpdate
		} else {
			update = now.After(f.LastUpdated.Add(f.UpdateInterval))
		}

		if update {
			due = append(due, f.ID)
		}
	}

	if len(due) != 0 {
		logging.L(ctx).Debugf("%d feeds are due for update.", len(due))
		s.Update(ctx, due, UpdateOptions{Background: true})
	}

	return nil
}
