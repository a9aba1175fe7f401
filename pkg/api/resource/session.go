package resource

import (
	"sort"
	"time"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
)

type SessionResource struct {
	SessionID   string    `json:"sessionId"`
	BusNumber   string    `json:"busNumber"`
	TrackerID   string    `json:"trackerId"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Accuracy    float64   `json:"accuracy"`
	LastUpdated time.Time `json:"lastUpdated"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type SessionListResource struct {
	Members []*SessionResource `json:"members"`
}

func NewSession(m *model.Session) (out *SessionResource) {
	out = &SessionResource{
		SessionID:   m.ID,
		BusNumber:   m.BusNumber,
		TrackerID:   m.TrackerID,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Accuracy:    m.Accuracy,
		LastUpdated: m.LastUpdated,
		ExpiresAt:   m.ExpiresAt,
	}

	return // out
}

func NewSessionList(m map[string]model.Session) (out *SessionListResource) {
	out = &SessionListResource{
		Members: make([]*SessionResource, 0),
	}

	for _, elem := range m {
		out.Members = append(out.Members, NewSession(&elem))
	}

	// Default sort by bus number
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].BusNumber < out.Members[j].BusNumber
	})

	return // out
}
