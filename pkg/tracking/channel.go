package tracking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/proto"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/websocket"
)

// Channel is the server side of one client's persistent connection. Both
// trackers and consumers use the same channel: consumers join rooms,
// trackers push location updates, and the hub delivers fan-out through the
// channel's Send method.
type Channel struct {
	sync.RWMutex
	ctrl          *Controller
	hub           *Hub
	driver        *websocket.Driver
	connID        string
	lastMessageAt time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewChannel creates the channel for an upgraded connection and starts
// consuming its inbox.
func (ctrl *Controller) NewChannel(driver *websocket.Driver) *Channel {
	ch := &Channel{
		ctrl:   ctrl,
		hub:    ctrl.hub,
		driver: driver,
		connID: uuid.NewString(),
		stopCh: make(chan struct{}),
	}

	go ch.inboxWorker()

	return ch
}

// ID returns the connection id. It identifies the origin of location updates
// so the fan-out can exclude the sending tracker.
func (ch *Channel) ID() string {
	return ch.connID
}

// Send queues a message for delivery to the client. It reports false when
// the outbox is full.
func (ch *Channel) Send(data []byte) bool {
	return ch.pushBackMessage(websocket.FlagContinue, data)
}

// Close is called when the websocket handler method is exiting, e.g. the
// connection is closed. It removes the client from every room.
func (ch *Channel) Close() {
	ch.stopOnce.Do(func() {
		close(ch.stopCh)
	})
	ch.hub.DropClient(ch)
}

func (ch *Channel) inboxWorker() {
	for {
		select {
		case msg := <-ch.driver.Inbox:
			ch.HandleMessage(msg.Data)
		case <-ch.stopCh:
			return
		}
	}
}

// HandleMessage dispatches one inbound message to its handler.
func (ch *Channel) HandleMessage(data []byte) {
	log.Debugf("channel '%s' handles message '%s'", ch.connID, string(data))

	msgType, msg, err := proto.UnmarshalMessage(data)
	if err != nil {
		ch.errorMessage(ErrReasonValidationFailed, err.Error())
		return
	}

	switch msgType {
	case proto.MessageTypeJoinRoom:
		ch.handleMessage(msg, ch.joinRoomHandler())
	case proto.MessageTypeLeaveRoom:
		ch.handleMessage(msg, ch.leaveRoomHandler())
	case proto.MessageTypeLocationUpdate:
		ch.handleMessage(msg, ch.locationUpdateHandler())
	default:
		ch.errorMessage(ErrReasonValidationFailed, "unhandled message type")
	}
}

// messageHandler is a tooling for handling incoming messages, similar to the
// go http handler implementation.
type messageHandler interface {
	Handle(msg interface{})
}

type messageHandlerFunc func(msg interface{})

func (f messageHandlerFunc) Handle(msg interface{}) {
	f(msg)
}

func (ch *Channel) handleMessage(msg interface{}, h messageHandler) {
	ch.Lock()
	ch.lastMessageAt = time.Now().Round(time.Second).UTC()
	ch.Unlock()

	h.Handle(msg)
}

func (ch *Channel) joinRoomHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) {
		joinMsg, err := proto.MustJoinRoomMessage(msg)
		if err != nil {
			ch.errorMessage(ErrReasonValidationFailed, err.Error())
			return
		}
		if joinMsg.BusNumber == "" {
			ch.errorMessage(ErrReasonValidationFailed, "bus number must not be empty")
			return
		}

		ch.hub.Join(ch, joinMsg.BusNumber)
		ch.sendSnapshot(joinMsg.BusNumber)
	})
}

func (ch *Channel) leaveRoomHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) {
		leaveMsg, err := proto.MustLeaveRoomMessage(msg)
		if err != nil {
			ch.errorMessage(ErrReasonValidationFailed, err.Error())
			return
		}

		ch.hub.Leave(ch, leaveMsg.BusNumber)
	})
}

func (ch *Channel) locationUpdateHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) {
		updateMsg, err := proto.MustLocationUpdateMessage(msg)
		if err != nil {
			ch.errorMessage(ErrReasonValidationFailed, err.Error())
			return
		}

		accuracy := model.DefaultAccuracy
		if updateMsg.Args.Accuracy != nil {
			accuracy = *updateMsg.Args.Accuracy
		}

		_, err = ch.ctrl.UpdateLocation(updateMsg.SessionID,
			float64(updateMsg.Args.Latitude), float64(updateMsg.Args.Longitude),
			accuracy, updateMsg.Args.Timestamp, ch.connID)
		if err != nil {
			switch {
			case IsValidationError(err):
				ch.errorMessage(ErrReasonValidationFailed, err.Error())
			case IsInvalidSessionError(err):
				ch.errorMessage(ErrReasonInvalidSession, err.Error())
			default:
				ch.errorMessage(ErrReasonStoreFailure, "could not apply location update")
			}
			return
		}

		// The tracker does not need to hear its own update echoed, the
		// fan-out excludes this connection.
	})
}

// sendSnapshot delivers the room's current state to this client only: the
// active session's position, or an explicit no-tracker signal.
func (ch *Channel) sendSnapshot(busNumber string) {
	sess, err := ch.ctrl.Snapshot(busNumber)
	if err == storage.ErrNotFound {
		out, err := proto.MarshalNewNoTrackerMessage(busNumber)
		if err != nil {
			log.Errorf("channel could not marshal no-tracker message: %v", err)
			return
		}
		ch.pushBackMessage(websocket.FlagContinue, out)
		return
	} else if err != nil {
		log.Errorf("channel failed to load snapshot for bus '%s': %v", busNumber, err)
		ch.errorMessage(ErrReasonStoreFailure, "could not load room snapshot")
		return
	}

	out, err := proto.MarshalNewLocationUpdatedMessage(busNumber, proto.LocationPayload{
		Latitude:  sess.Latitude,
		Longitude: sess.Longitude,
		Accuracy:  sess.Accuracy,
		Timestamp: sess.LastUpdated.UnixMilli(),
	})
	if err != nil {
		log.Errorf("channel could not marshal snapshot message: %v", err)
		return
	}
	ch.pushBackMessage(websocket.FlagContinue, out)
}

func (ch *Channel) errorMessage(reason ErrorReason, message string) {
	out, err := proto.MarshalNewErrorMessage(reason.String(), map[string]string{"message": message})
	// This error should happen never! If it happens log an urgent error
	// and terminate the websocket session for safety.
	if err != nil {
		log.Errorf("channel could not marshal error message: %v", err)
		ch.pushBackMessage(websocket.FlagTerminate, nil)
		return
	}
	ch.pushBackMessage(websocket.FlagContinue, out)
}

func (ch *Channel) pushBackMessage(flag websocket.Flag, data []byte) bool {
	select {
	case ch.driver.Outbox <- websocket.NewOutboxMessage(flag, data):
		return true
	default:
		return false // Buffer is full
	}
}
