package memory

import (
	"sync"
	"time"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
)

type sessionStore struct {
	store map[string]model.Session
	sync.RWMutex
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		store: make(map[string]model.Session),
	}
}

func (s *sessionStore) FetchAll() (models map[string]model.Session, err error) {
	s.RLock()
	defer s.RUnlock()
	models = make(map[string]model.Session, len(s.store))

	for id, m := range s.store {
		models[id] = m
	}

	return models, nil
}

func (s *sessionStore) FindByID(id string) (*model.Session, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[id]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *sessionStore) FindActiveByBus(busNumber string) (*model.Session, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.store {
		if m.BusNumber == busNumber {
			return &m, nil
		}
	}

	return nil, storage.ErrNotFound
}

// Create holds the write lock across the conflict check and the insert, so
// that of two racing claims for the same bus exactly one succeeds.
func (s *sessionStore) Create(m *model.Session) error {
	s.Lock()
	defer s.Unlock()

	for _, existing := range s.store {
		if existing.BusNumber == m.BusNumber {
			return storage.ErrConflict
		}
	}

	m.CreatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.ID] = *m

	return nil
}

func (s *sessionStore) UpdateLocation(id string, lat, lng, accuracy float64, now time.Time) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	m.Latitude = lat
	m.Longitude = lng
	m.Accuracy = accuracy
	m.LastUpdated = now
	s.store[id] = m

	return nil
}

func (s *sessionStore) Delete(id string) (*model.Session, error) {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	delete(s.store, id)

	return &m, nil
}

func (s *sessionStore) DeleteStale(busNumber string, olderThan time.Time) (int64, error) {
	s.Lock()
	defer s.Unlock()

	var count int64
	for id, m := range s.store {
		if m.BusNumber == busNumber && m.LastUpdated.Before(olderThan) {
			delete(s.store, id)
			count++
		}
	}

	return count, nil
}

func (s *sessionStore) DeleteExpired(now time.Time) (int64, error) {
	s.Lock()
	defer s.Unlock()

	var count int64
	for id, m := range s.store {
		if !m.ExpiresAt.After(now) {
			delete(s.store, id)
			count++
		}
	}

	return count, nil
}
