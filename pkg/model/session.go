package model

import "time"

// DefaultAccuracy is assumed when a tracker does not report one.
const DefaultAccuracy = 10.0

// Session is a model of the persistency layer. A session represents one
// tracker's claim on a bus. Deletion is the terminal state: a released,
// expired or preempted session is removed, never archived.
type Session struct {
	ID          string
	BusNumber   string
	TrackerID   string
	Latitude    float64
	Longitude   float64
	Accuracy    float64
	LastUpdated time.Time
	ExpiresAt   time.Time

	CreatedAt time.Time
}
