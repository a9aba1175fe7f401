package tracking

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
)

// Sweeper periodically removes sessions past their absolute expiry. A failed
// sweep is logged and retried on the next tick; it never blocks foreground
// request handling.
type Sweeper struct {
	store    storage.Interface
	interval time.Duration
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSweeper(store storage.Interface, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop in the background. The first sweep happens
// immediately on start.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the sweep loop and waits for a sweep in flight.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopCh:
			log.Debug("sweeper received stop signal")
			return
		}
	}
}

// Sweep deletes every session whose expiry has passed.
func (s *Sweeper) Sweep() {
	now := s.now().Round(time.Second).UTC()

	count, err := s.store.Sessions().DeleteExpired(now)
	if err != nil {
		log.Errorf("sweeper failed to delete expired sessions: %v", err)
		return
	}

	if count > 0 {
		log.Infof("sweeper removed %d expired session(s)", count)
	}
}
