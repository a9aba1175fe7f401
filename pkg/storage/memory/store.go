package memory

import "github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"

// Store contains all memory-based sub-stores for managing the persistent models
type store struct {
	sessions *sessionStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	return &store{
		sessions: newSessionStore(),
	}
}

// Sessions returns a sub-store for managing the Session model
func (s *store) Sessions() storage.SessionStore {
	return s.sessions
}
