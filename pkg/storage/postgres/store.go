package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
)

// store contains all PostgreSQL based sub-stores for managing the models
type store struct {
	sessions *sessionStore
}

// NewStore creates a new PostgreSQL based Storage interface
func NewStore(db *sqlx.DB) storage.Interface {
	return &store{
		sessions: newSessionStore(db),
	}
}

// Sessions returns a sub-store for managing the Session model
func (s *store) Sessions() storage.SessionStore {
	return s.sessions
}
