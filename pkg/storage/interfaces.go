package storage

import (
	"time"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
)

// Interface is implemented by the storage
type Interface interface {
	Sessions() SessionStore
}

// SessionStore is responsible for managing the Session model
type SessionStore interface {
	FetchAll() (map[string]model.Session, error)
	FindByID(id string) (*model.Session, error)
	FindActiveByBus(busNumber string) (*model.Session, error)

	// Create inserts the session if and only if no session for the same bus
	// number exists. The check and the insert are a single atomic operation;
	// a losing concurrent claim observes ErrConflict.
	Create(m *model.Session) error

	UpdateLocation(id string, lat, lng, accuracy float64, now time.Time) error

	// Delete removes the session and returns the removed record, or
	// ErrNotFound when the id is unknown.
	Delete(id string) (*model.Session, error)

	// DeleteStale removes sessions for the given bus whose last update is
	// older than the given instant.
	DeleteStale(busNumber string, olderThan time.Time) (int64, error)

	// DeleteExpired removes every session whose absolute expiry has passed.
	DeleteExpired(now time.Time) (int64, error)
}
