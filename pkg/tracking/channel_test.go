package tracking

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/proto"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/websocket"
)

// newTestChannel builds a channel whose driver is never started, so the
// outbox can be inspected directly.
func newTestChannel(ctrl *Controller) (*Channel, *websocket.Driver) {
	driver := websocket.NewDriver(nil, make(chan struct{}, 1))
	ch := ctrl.NewChannel(driver)
	return ch, driver
}

func nextOutbox(t *testing.T, driver *websocket.Driver) []byte {
	t.Helper()
	select {
	case msg := <-driver.Outbox:
		return msg.Data
	case <-time.After(time.Second):
		t.Fatalf("no outbox message")
		return nil
	}
}

func TestJoinRoomDeliversNoTrackerSnapshot(t *testing.T) {
	ctrl := newTestController()
	ch, driver := newTestChannel(ctrl)
	defer ch.Close()

	ch.HandleMessage([]byte(`[1,"12"]`))

	msgType, parts := decodeEnvelope(t, nextOutbox(t, driver))
	if msgType != proto.MessageTypeNoTracker {
		t.Fatalf("expected no-tracker snapshot, got %v", msgType)
	}
	var busNumber string
	if err := json.Unmarshal(parts[0], &busNumber); err != nil || busNumber != "12" {
		t.Errorf("expected bus 12, got %s (%v)", busNumber, err)
	}

	if ctrl.hub.MemberCount("12") != 1 {
		t.Errorf("client did not join the room")
	}
}

func TestJoinRoomDeliversActiveSessionSnapshot(t *testing.T) {
	ctrl := newTestController()

	if _, err := ctrl.ClaimSession("12", ClaimLocation{Latitude: 17.3850, Longitude: 78.4867, Accuracy: 10}); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	ch, driver := newTestChannel(ctrl)
	defer ch.Close()

	ch.HandleMessage([]byte(`[1,"12"]`))

	msgType, parts := decodeEnvelope(t, nextOutbox(t, driver))
	if msgType != proto.MessageTypeLocationUpdated {
		t.Fatalf("expected location-updated snapshot, got %v", msgType)
	}
	payload := proto.LocationPayload{}
	if err := json.Unmarshal(parts[1], &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Latitude != 17.3850 || payload.Longitude != 78.4867 {
		t.Errorf("snapshot does not carry the session position: %+v", payload)
	}

	// Exactly one snapshot, nothing else queued
	select {
	case msg := <-driver.Outbox:
		t.Errorf("unexpected extra message: %s", string(msg.Data))
	default:
	}
}

func TestLocationUpdateOnDeadSessionYieldsError(t *testing.T) {
	ctrl := newTestController()
	ch, driver := newTestChannel(ctrl)
	defer ch.Close()

	ch.HandleMessage([]byte(`[3,"no-such-session",{"latitude":17.0,"longitude":78.0}]`))

	msgType, parts := decodeEnvelope(t, nextOutbox(t, driver))
	if msgType != proto.MessageTypeError {
		t.Fatalf("expected error message, got %v", msgType)
	}
	var reason string
	if err := json.Unmarshal(parts[0], &reason); err != nil {
		t.Fatalf("invalid reason: %v", err)
	}
	if reason != ErrReasonInvalidSession.String() {
		t.Errorf("expected %s, got %s", ErrReasonInvalidSession, reason)
	}
}

func TestLocationUpdateAppliesDefaultAccuracy(t *testing.T) {
	ctrl := newTestController()

	sess, err := ctrl.ClaimSession("4", ClaimLocation{Latitude: 17.0, Longitude: 78.0, Accuracy: 10})
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	consumer := newFakeClient("consumer-conn")
	ctrl.hub.Join(consumer, "4")

	ch, _ := newTestChannel(ctrl)
	defer ch.Close()

	ch.HandleMessage([]byte(fmt.Sprintf(`[3,%q,{"latitude":"17.5","longitude":"78.5"}]`, sess.ID)))

	msgs := consumer.received()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 fan-out message, got %d", len(msgs))
	}
	_, parts := decodeEnvelope(t, msgs[0])
	payload := proto.LocationPayload{}
	if err := json.Unmarshal(parts[1], &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Accuracy != 10.0 {
		t.Errorf("expected default accuracy 10.0, got %v", payload.Accuracy)
	}
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	ctrl := newTestController()
	ch, driver := newTestChannel(ctrl)
	defer ch.Close()

	ch.HandleMessage([]byte(`[1,"6"]`))
	nextOutbox(t, driver) // drop the snapshot

	ch.HandleMessage([]byte(`[2,"6"]`))

	ctrl.hub.BroadcastLocation("6", proto.LocationPayload{}, "")
	select {
	case msg := <-driver.Outbox:
		t.Errorf("received broadcast after leaving: %s", string(msg.Data))
	default:
	}
}

func TestMalformedMessageYieldsValidationError(t *testing.T) {
	ctrl := newTestController()
	ch, driver := newTestChannel(ctrl)
	defer ch.Close()

	ch.HandleMessage([]byte(`not json`))

	msgType, parts := decodeEnvelope(t, nextOutbox(t, driver))
	if msgType != proto.MessageTypeError {
		t.Fatalf("expected error message, got %v", msgType)
	}
	var reason string
	if err := json.Unmarshal(parts[0], &reason); err != nil {
		t.Fatalf("invalid reason: %v", err)
	}
	if reason != ErrReasonValidationFailed.String() {
		t.Errorf("expected %s, got %s", ErrReasonValidationFailed, reason)
	}
}
