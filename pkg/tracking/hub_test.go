package tracking

import (
	"encoding/json"
	"testing"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/proto"
)

func TestHubJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newFakeClient("conn-1")

	hub.Join(c, "12")
	hub.Join(c, "12")

	if got := hub.MemberCount("12"); got != 1 {
		t.Fatalf("expected 1 member after double join, got %d", got)
	}

	hub.BroadcastLocation("12", proto.LocationPayload{Latitude: 1, Longitude: 2}, "")
	if got := len(c.received()); got != 1 {
		t.Errorf("expected exactly 1 delivery, got %d", got)
	}
}

func TestHubLeave(t *testing.T) {
	hub := NewHub()
	c := newFakeClient("conn-1")

	hub.Join(c, "12")
	hub.Leave(c, "12")
	// Leaving again or leaving an unknown room is a no-op
	hub.Leave(c, "12")
	hub.Leave(c, "99")

	hub.BroadcastLocation("12", proto.LocationPayload{}, "")
	if got := len(c.received()); got != 0 {
		t.Errorf("expected no delivery after leave, got %d", got)
	}
}

func TestHubBroadcastExcludesOrigin(t *testing.T) {
	hub := NewHub()
	origin := newFakeClient("origin")
	other := newFakeClient("other")

	hub.Join(origin, "5")
	hub.Join(other, "5")

	hub.BroadcastLocation("5", proto.LocationPayload{Latitude: 17, Longitude: 78}, "origin")

	if len(origin.received()) != 0 {
		t.Errorf("origin must be excluded from the broadcast")
	}
	if len(other.received()) != 1 {
		t.Errorf("other members must receive the broadcast")
	}
}

func TestHubBroadcastIsRoomScoped(t *testing.T) {
	hub := NewHub()
	inRoom := newFakeClient("in")
	elsewhere := newFakeClient("out")

	hub.Join(inRoom, "5")
	hub.Join(elsewhere, "6")

	hub.BroadcastLocation("5", proto.LocationPayload{}, "")

	if len(inRoom.received()) != 1 {
		t.Errorf("member of room 5 missed the broadcast")
	}
	if len(elsewhere.received()) != 0 {
		t.Errorf("broadcast leaked into room 6")
	}
}

func TestHubNotifyTrackerDisconnected(t *testing.T) {
	hub := NewHub()
	c := newFakeClient("conn-1")
	hub.Join(c, "12")

	hub.NotifyTrackerDisconnected("12")

	msgs := c.received()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal(msgs[0], &envelope); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	var msgType int
	if err := json.Unmarshal(envelope[0], &msgType); err != nil {
		t.Fatalf("invalid message type: %v", err)
	}
	if proto.MessageType(msgType) != proto.MessageTypeTrackerDisconnected {
		t.Errorf("expected tracker-disconnected, got %d", msgType)
	}
}

func TestHubDropClient(t *testing.T) {
	hub := NewHub()
	c := newFakeClient("conn-1")
	hub.Join(c, "1")
	hub.Join(c, "2")

	hub.DropClient(c)

	if hub.MemberCount("1") != 0 || hub.MemberCount("2") != 0 {
		t.Errorf("client still member after drop")
	}
}
