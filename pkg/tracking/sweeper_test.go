package tracking

import (
	"testing"
	"time"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage/memory"
)

func TestSweepRemovesExpiredSessions(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().Round(time.Second).UTC()

	expired := &model.Session{
		ID:          "expired",
		BusNumber:   "1",
		TrackerID:   "t1",
		LastUpdated: now,
		ExpiresAt:   now.Add(-time.Minute),
	}
	if err := store.Sessions().Create(expired); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	live := &model.Session{
		ID:          "live",
		BusNumber:   "2",
		TrackerID:   "t2",
		LastUpdated: now,
		ExpiresAt:   now.Add(time.Hour),
	}
	if err := store.Sessions().Create(live); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	s := NewSweeper(store, time.Minute)
	s.now = func() time.Time { return now }
	s.Sweep()

	if _, err := store.Sessions().FindByID("expired"); err != storage.ErrNotFound {
		t.Errorf("expired session survived the sweep")
	}
	if _, err := store.Sessions().FindByID("live"); err != nil {
		t.Errorf("live session was swept: %v", err)
	}
}

// The sweep runs immediately on start, before the first tick.
func TestSweeperStartSweepsImmediately(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().Round(time.Second).UTC()

	expired := &model.Session{
		ID:          "expired",
		BusNumber:   "1",
		TrackerID:   "t1",
		LastUpdated: now,
		ExpiresAt:   now.Add(-time.Minute),
	}
	if err := store.Sessions().Create(expired); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	s := NewSweeper(store, time.Hour)
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := store.Sessions().FindByID("expired"); err == storage.ErrNotFound {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expired session not removed by the startup sweep")
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	s := NewSweeper(memory.NewStore(), time.Hour)
	s.Start()
	s.Stop()
	s.Stop()
}
