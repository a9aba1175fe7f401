package resource

import (
	"time"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/proto"
)

// ClaimRequest is the body of a claim. Coordinates are accepted as JSON
// numbers or numeric strings; both latitude and longitude are required.
type ClaimRequest struct {
	BusNumber string            `json:"busNumber"`
	Latitude  *proto.Coordinate `json:"latitude"`
	Longitude *proto.Coordinate `json:"longitude"`
	Accuracy  *float64          `json:"accuracy,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
}

type ClaimResponse struct {
	SessionID string `json:"sessionId"`
	BusNumber string `json:"busNumber"`
	TrackerID string `json:"trackerId"`
}

func NewClaim(m *model.Session) *ClaimResponse {
	return &ClaimResponse{
		SessionID: m.ID,
		BusNumber: m.BusNumber,
		TrackerID: m.TrackerID,
	}
}

type ExistingTrackerResource struct {
	BusNumber   string    `json:"busNumber"`
	TrackerID   string    `json:"trackerId,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type ConflictResponse struct {
	Error           string                  `json:"error"`
	ExistingTracker ExistingTrackerResource `json:"existingTracker"`
}

type ReleaseResponse struct {
	BusNumber string `json:"busNumber"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
