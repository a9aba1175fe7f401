package tracking

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
)

// ClaimLocation is the initial position supplied with a claim.
type ClaimLocation struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// ClaimSession establishes a new tracking session for the bus. Stale
// sessions for the same bus are removed first (best effort), then the
// session is created through the store's atomic conditional insert: of two
// racing claims exactly one succeeds, the other observes a ConflictError
// carrying the winning session's details.
func (ctrl *Controller) ClaimSession(busNumber string, loc ClaimLocation) (*model.Session, error) {
	busNumber = strings.TrimSpace(busNumber)
	if busNumber == "" {
		return nil, NewValidationError("busNumber", "bus number must not be empty")
	}
	if err := validateCoordinates(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}
	if err := validateAccuracy(loc.Accuracy); err != nil {
		return nil, err
	}

	now := ctrl.now().Round(time.Second).UTC()

	// Best-effort cleanup of abandoned sessions for this bus. A failure here
	// must never block the claim itself; at worst the claim reports a
	// conflict against a session that could not be removed.
	if count, err := ctrl.store.Sessions().DeleteStale(busNumber, now.Add(-ctrl.staleAfter)); err != nil {
		log.Warnf("controller could not clean up stale sessions for bus '%s': %v", busNumber, err)
	} else if count > 0 {
		log.Infof("controller preempted %d stale session(s) for bus '%s'", count, busNumber)
	}

	sess := model.Session{
		ID:          uuid.NewString(),
		BusNumber:   busNumber,
		TrackerID:   uuid.NewString(),
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Accuracy:    loc.Accuracy,
		LastUpdated: now,
		ExpiresAt:   now.Add(ctrl.sessionTTL),
	}

	if err := ctrl.store.Sessions().Create(&sess); err == storage.ErrConflict {
		existing, findErr := ctrl.store.Sessions().FindActiveByBus(busNumber)
		if findErr != nil {
			log.Warnf("controller lost a claim for bus '%s' but could not load the winning session: %v", busNumber, findErr)
			return nil, &ConflictError{BusNumber: busNumber}
		}
		return nil, &ConflictError{
			BusNumber:   existing.BusNumber,
			TrackerID:   existing.TrackerID,
			LastUpdated: existing.LastUpdated,
		}
	} else if err != nil {
		log.Errorf("controller failed to create new session: %v", err)
		return nil, errors.Wrap(err, "failed to create session")
	}

	log.Infof("controller added a new tracking session '%s' for bus '%s'", sess.ID, sess.BusNumber)

	// Subscribers already in the room learn about the new tracker right
	// away, without re-joining.
	ctrl.fanOutLocation(locationEvent{
		BusNumber: sess.BusNumber,
		Latitude:  sess.Latitude,
		Longitude: sess.Longitude,
		Accuracy:  sess.Accuracy,
		Timestamp: now.UnixMilli(),
	})

	return &sess, nil
}

// ReleaseSession deletes the session and notifies the bus room that tracking
// has stopped. A second release of the same id reports an invalid session.
func (ctrl *Controller) ReleaseSession(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", NewValidationError("sessionId", "session id must not be empty")
	}

	sess, err := ctrl.store.Sessions().Delete(sessionID)
	if err == storage.ErrNotFound {
		return "", &InvalidSessionError{SessionID: sessionID}
	} else if err != nil {
		log.Errorf("controller failed to delete session '%s': %v", sessionID, err)
		return "", errors.Wrap(err, "failed to delete session")
	}

	log.Infof("controller released the tracking session '%s' for bus '%s'", sess.ID, sess.BusNumber)

	ctrl.fanOutTrackerDisconnected(sess.BusNumber)

	return sess.BusNumber, nil
}

// UpdateLocation applies a position report to an existing session and fans
// it out to the bus room, excluding the origin connection. A session that
// has been released, expired or swept yields an InvalidSessionError, never a
// silent no-op.
func (ctrl *Controller) UpdateLocation(sessionID string, lat, lng, accuracy float64, timestamp int64, originConnID string) (*model.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, NewValidationError("sessionId", "session id must not be empty")
	}
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if err := validateAccuracy(accuracy); err != nil {
		return nil, err
	}

	sess, err := ctrl.store.Sessions().FindByID(sessionID)
	if err == storage.ErrNotFound {
		return nil, &InvalidSessionError{SessionID: sessionID}
	} else if err != nil {
		log.Errorf("controller failed to look up session '%s': %v", sessionID, err)
		return nil, errors.Wrap(err, "failed to find session")
	}

	now := ctrl.now().Round(time.Second).UTC()
	if err := ctrl.store.Sessions().UpdateLocation(sessionID, lat, lng, accuracy, now); err == storage.ErrNotFound {
		// The sweeper or a preempting claim got there first.
		return nil, &InvalidSessionError{SessionID: sessionID}
	} else if err != nil {
		log.Errorf("controller failed to update location of session '%s': %v", sessionID, err)
		return nil, errors.Wrap(err, "failed to update session location")
	}

	sess.Latitude = lat
	sess.Longitude = lng
	sess.Accuracy = accuracy
	sess.LastUpdated = now

	if timestamp == 0 {
		timestamp = now.UnixMilli()
	}

	ctrl.fanOutLocation(locationEvent{
		BusNumber: sess.BusNumber,
		Latitude:  lat,
		Longitude: lng,
		Accuracy:  accuracy,
		Timestamp: timestamp,
		Origin:    originConnID,
	})

	return sess, nil
}

// Snapshot returns the active session for the bus, or storage.ErrNotFound
// when no tracker is live. Room joins use it to deliver the initial state.
func (ctrl *Controller) Snapshot(busNumber string) (*model.Session, error) {
	return ctrl.store.Sessions().FindActiveByBus(busNumber)
}

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return NewValidationError("latitude", "latitude must be finite")
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) {
		return NewValidationError("longitude", "longitude must be finite")
	}
	if lat < -90 || lat > 90 {
		return NewValidationError("latitude", "latitude must be within [-90, 90]")
	}
	if lng < -180 || lng > 180 {
		return NewValidationError("longitude", "longitude must be within [-180, 180]")
	}
	return nil
}

func validateAccuracy(accuracy float64) error {
	if math.IsNaN(accuracy) || math.IsInf(accuracy, 0) || accuracy < 0 {
		return NewValidationError("accuracy", "accuracy must be a non-negative number of meters")
	}
	return nil
}
