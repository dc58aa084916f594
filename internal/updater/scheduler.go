package updater

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/internal/util"
)

// Scheduler multiplexes interactive and background update requests into a throttled stream of feed updates.
//
// A feed ID is a member of at most one of the priority queue, the background queue and the underway set. Updates run
// concurrently: the worker only throttles their start.
type Scheduler struct {
	db    Database
	prefs Prefs
	options
	metrics

	stopped   chan struct{}
	stopOnce  sync.Once
	waitGroup sync.WaitGroup

	lock       util.GuardedLock
	priority   []string
	background []string
	underway   []string
	completed  []string
	updated    map[string]int
	draining   bool
	idle       chan struct{}
}

func New(db Database, prefs Prefs, opts ...Option) *Scheduler {
	idle := make(chan struct{})
	close(idle)

	return &Scheduler{
		db:      db,
		prefs:   prefs,
		options: makeOptions(opts),
		metrics: makeMetrics(),

		stopped: make(chan struct{}),
		updated: make(map[string]int),
		idle:    idle,
	}
}

// Update schedules update of the specified feeds. Feeds which are already being updated are skipped, interactive
// requests promote feeds from the background queue.
func (s *Scheduler) Update(ctx context.Context, ids []string, options UpdateOptions) {
	select {
	case <-s.stopped:
		logging.L(ctx).Warnf("Ignoring update request: the scheduler is closed.")
		return
	default:
	}

	lock := s.lock.Lock()
	defer lock.UnlockIfLocked()

	var scheduled int
	for _, id := range ids {
		if s.enqueueLocked(id, options.Background) {
			scheduled++
		}
	}
	if scheduled == 0 {
		return
	}

	s.markBusyLocked()
	startWorker := !s.draining
	s.draining = true
	s.broadcastLocked()
	lock.Unlock()

	kind := "interactive"
	if options.Background {
		kind = "background"
	}
	logging.L(ctx).Infof("%d feeds have been scheduled for %s update.", scheduled, kind)

	if startWorker {
		ctx := context.WithoutCancel(ctx)
		s.waitGroup.Go(func() {
			s.worker(ctx)
		})
	}
}

// UpdateAll schedules update of all visible feeds.
func (s *Scheduler) UpdateAll(ctx context.Context, options UpdateOptions) error {
	feeds, err := s.db.Feeds(ctx)
	if err != nil {
		return fmt.Errorf("unable to get the list of feeds: %w", err)
	}

	var ids []string
	for _, f := range feeds {
		if f.Updatable() {
			ids = append(ids, f.ID)
		}
	}

	s.Update(ctx, ids, options)
	return nil
}

// Stop drops all queued feeds. Updates which are already underway are finished and their results are saved.
func (s *Scheduler) Stop(ctx context.Context) {
	lock := s.lock.Lock()
	dropped := len(s.priority) + len(s.background)
	s.priority, s.background = nil, nil
	updated := s.finishLocked()
	s.broadcastLocked()
	lock.Unlock()

	logging.L(ctx).Infof("The update has been stopped: %d queued feeds have been dropped.", dropped)
	s.notify(ctx, updated)
}

func (s *Scheduler) Status() Status {
	lock := s.lock.Lock()
	defer lock.Unlock()
	return s.statusLocked()
}

// QueryStatus returns the current status and broadcasts it to all listeners.
func (s *Scheduler) QueryStatus() Status {
	lock := s.lock.Lock()
	defer lock.Unlock()
	return s.broadcastLocked()
}

// Wait waits until all scheduled feeds are updated.
func (s *Scheduler) Wait(ctx context.Context) error {
	lock := s.lock.Lock()
	idle := s.idle
	lock.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the periodic updates and waits for all running tasks to finish.
func (s *Scheduler) Close(ctx context.Context) {
	logging.L(ctx).Infof("Stopping the scheduler...")
	s.stopOnce.Do(func() {
		close(s.stopped)
	})
	s.waitGroup.Wait()
	logging.L(ctx).Infof("The scheduler has stopped.")
}

func (s *Scheduler) worker(ctx context.Context) {
	for {
		lock := s.lock.Lock()

		id, ok := s.dequeueLocked()
		if !ok {
			s.draining = false
			lock.Unlock()
			return
		}

		s.underway = append(s.underway, id)

		pending := len(s.priority)+len(s.background) != 0
		if !pending {
			s.draining = false
		}

		prefs := s.prefs.Get()
		delay := prefs.BackgroundFetchDelay
		if len(s.priority) != 0 {
			delay = prefs.DefaultFetchDelay
		}

		s.broadcastLocked()
		lock.Unlock()

		s.waitGroup.Go(func() {
			s.update(ctx, id)
		})

		if !pending {
			return
		}

		if !s.sleep(delay) {
			lock.Lock()
			s.draining = false
			lock.Unlock()
			return
		}
	}
}

func (s *Scheduler) update(ctx context.Context, id string) {
	newEntries := s.runPipeline(ctx, id)

	lock := s.lock.Lock()
	s.underway = slices.DeleteFunc(s.underway, func(underway string) bool {
		return underway == id
	})
	s.completed = append(s.completed, id)
	if newEntries != 0 {
		s.updated[id] += newEntries
	}

	s.broadcastLocked()

	var updated map[string]int
	drained := s.queuedLocked() == 0 && len(s.underway) == 0
	if drained {
		updated = s.finishLocked()
	}
	lock.Unlock()

	if drained {
		s.notify(ctx, updated)
	}
}

func (s *Scheduler) enqueueLocked(id string, background bool) bool {
	if slices.Contains(s.underway, id) {
		return false
	}

	if background {
		if slices.Contains(s.priority, id) || slices.Contains(s.background, id) {
			return false
		}
		s.background = append(s.background, id)
	} else {
		if slices.Contains(s.priority, id) {
			return false
		}
		s.background = slices.DeleteFunc(s.background, func(queued string) bool {
			return queued == id
		})
		s.priority = append(s.priority, id)
	}

	s.completed = slices.DeleteFunc(s.completed, func(completed string) bool {
		return completed == id
	})

	return true
}

func (s *Scheduler) dequeueLocked() (string, bool) {
	for _, queue := range []*[]string{&s.priority, &s.background} {
		if len(*queue) != 0 {
			id := (*queue)[0]
			*queue = (*queue)[1:]
			return id, true
		}
	}
	return "", false
}

func (s *Scheduler) queuedLocked() int {
	return len(s.priority) + len(s.background)
}

// Resets the update cycle returning number of new entries per feed.
func (s *Scheduler) finishLocked() map[string]int {
	updated := s.updated
	s.updated = make(map[string]int)
	s.completed = nil

	if s.queuedLocked() == 0 && len(s.underway) == 0 {
		s.markIdleLocked()
	}

	s.drains.Inc()
	return updated
}

func (s *Scheduler) statusLocked() Status {
	queued := s.queuedLocked()
	total := len(s.completed) + len(s.underway) + queued

	progress := 1.0
	if total != 0 {
		progress = float64(len(s.completed)) / float64(total)
	}

	s.queueSize.WithLabelValues(queuePriority).Set(float64(len(s.priority)))
	s.queueSize.WithLabelValues(queueBackground).Set(float64(len(s.background)))
	s.queueSize.WithLabelValues(queueUnderway).Set(float64(len(s.underway)))

	return Status{
		Active:   queued != 0 || len(s.underway) != 0,
		Progress: progress,
		Underway: append([]string{}, s.underway...),
	}
}

// Status listeners get the updates in the order of state mutations, so they must not block.
func (s *Scheduler) broadcastLocked() Status {
	status := s.statusLocked()
	s.comm.BroadcastStatus(status)
	return status
}

func (s *Scheduler) markBusyLocked() {
	select {
	case <-s.idle:
		s.idle = make(chan struct{})
	default:
	}
}

func (s *Scheduler) markIdleLocked() {
	select {
	case <-s.idle:
	default:
		close(s.idle)
	}
}

func (s *Scheduler) sleep(delay time.Duration) bool {
	select {
	case <-s.timer(delay):
		return true
	case <-s.stopped:
		return false
	}
}
