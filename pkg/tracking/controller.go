package tracking

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/proto"
)

const (
	subjectLocationFmt = "bustracker.v1.%s.location"
	subjectStatusFmt   = "bustracker.v1.%s.status"
)

// Controller owns the session lifecycle and the location relay. It enforces
// the at-most-one-tracker-per-bus invariant through the store's atomic
// conditional insert and fans accepted updates out to the bus rooms.
//
// The NATS connection is optional: when present, fan-out events take a round
// trip through NATS so every serving process delivers them to its local
// rooms; when nil the controller delivers directly to the local hub.
type Controller struct {
	nc         *nats.Conn
	store      storage.Interface
	hub        *Hub
	sessionTTL time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

func NewController(nc *nats.Conn, store storage.Interface, hub *Hub, sessionTTL, staleAfter time.Duration) *Controller {
	return &Controller{
		nc:         nc,
		store:      store,
		hub:        hub,
		sessionTTL: sessionTTL,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// locationEvent is the NATS representation of an accepted location update.
// Origin carries the connection id to exclude from room delivery.
type locationEvent struct {
	BusNumber string  `json:"busNumber"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
	Origin    string  `json:"origin,omitempty"`
}

// statusEvent is the NATS representation of a tracker lifecycle change.
type statusEvent struct {
	BusNumber string `json:"busNumber"`
	Status    string `json:"status"`
}

const statusTrackerDisconnected = "TRACKER_DISCONNECTED"

// Subscribe attaches the controller to the fan-out subjects. Every serving
// process subscribes so that events published by any instance reach the
// rooms of all instances.
func (ctrl *Controller) Subscribe() error {
	if ctrl.nc == nil {
		return fmt.Errorf("controller: connection to nats is missing")
	}

	if _, err := ctrl.nc.Subscribe("bustracker.v1.*.location", func(msg *nats.Msg) {
		if err := ctrl.handleLocationEvent(msg); err != nil {
			log.Error("controller failed to handle location event: ", err.Error())
		}
	}); err != nil {
		return err
	}

	if _, err := ctrl.nc.Subscribe("bustracker.v1.*.status", func(msg *nats.Msg) {
		if err := ctrl.handleStatusEvent(msg); err != nil {
			log.Error("controller failed to handle status event: ", err.Error())
		}
	}); err != nil {
		return err
	}

	return nil
}

func (ctrl *Controller) handleLocationEvent(msg *nats.Msg) error {
	ev := locationEvent{}
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return err
	}

	ctrl.hub.BroadcastLocation(ev.BusNumber, proto.LocationPayload{
		Latitude:  ev.Latitude,
		Longitude: ev.Longitude,
		Accuracy:  ev.Accuracy,
		Timestamp: ev.Timestamp,
	}, ev.Origin)

	return nil
}

func (ctrl *Controller) handleStatusEvent(msg *nats.Msg) error {
	ev := statusEvent{}
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return err
	}

	if ev.Status == statusTrackerDisconnected {
		ctrl.hub.NotifyTrackerDisconnected(ev.BusNumber)
	}

	return nil
}

func (ctrl *Controller) fanOutLocation(ev locationEvent) {
	if ctrl.nc == nil {
		ctrl.hub.BroadcastLocation(ev.BusNumber, proto.LocationPayload{
			Latitude:  ev.Latitude,
			Longitude: ev.Longitude,
			Accuracy:  ev.Accuracy,
			Timestamp: ev.Timestamp,
		}, ev.Origin)
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("controller could not marshal location event: %v", err)
		return
	}

	if err := ctrl.nc.Publish(fmt.Sprintf(subjectLocationFmt, ev.BusNumber), data); err != nil {
		log.Errorf("controller could not publish location event: %v", err)
	}
}

func (ctrl *Controller) fanOutTrackerDisconnected(busNumber string) {
	if ctrl.nc == nil {
		ctrl.hub.NotifyTrackerDisconnected(busNumber)
		return
	}

	data, err := json.Marshal(statusEvent{
		BusNumber: busNumber,
		Status:    statusTrackerDisconnected,
	})
	if err != nil {
		log.Errorf("controller could not marshal status event: %v", err)
		return
	}

	if err := ctrl.nc.Publish(fmt.Sprintf(subjectStatusFmt, busNumber), data); err != nil {
		log.Errorf("controller could not publish status event: %v", err)
	}
}
