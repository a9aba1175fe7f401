package tracking

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking/proto"
)

// Client is a connection the hub can deliver messages to. Send must not
// block; it reports false when the client's outbox is full.
type Client interface {
	ID() string
	Send(data []byte) bool
}

// Hub is the registry of per-bus rooms. Membership is local to the serving
// process and advisory: the session store stays the single authority on who
// tracks a bus. The hub is injected into the controller and the client
// channels so it can be tested in isolation and swapped for a distributed
// fan-out layer.
type Hub struct {
	rooms map[string]map[string]Client
	sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]Client),
	}
}

// Join adds the client to the bus room. Joining a room twice is a no-op.
func (h *Hub) Join(c Client, busNumber string) {
	h.Lock()
	defer h.Unlock()

	room, ok := h.rooms[busNumber]
	if !ok {
		room = make(map[string]Client)
		h.rooms[busNumber] = room
	}
	room[c.ID()] = c
}

// Leave removes the client from the bus room. Leaving a room the client is
// not a member of is a no-op.
func (h *Hub) Leave(c Client, busNumber string) {
	h.Lock()
	defer h.Unlock()

	room, ok := h.rooms[busNumber]
	if !ok {
		return
	}
	delete(room, c.ID())
	if len(room) == 0 {
		delete(h.rooms, busNumber)
	}
}

// DropClient removes the client from every room. It is called when the
// client's connection goes away.
func (h *Hub) DropClient(c Client) {
	h.Lock()
	defer h.Unlock()

	for busNumber, room := range h.rooms {
		delete(room, c.ID())
		if len(room) == 0 {
			delete(h.rooms, busNumber)
		}
	}
}

// BroadcastLocation delivers a location-updated message to every member of
// the bus room except the excluded origin connection. The tracker does not
// need to hear its own update echoed.
func (h *Hub) BroadcastLocation(busNumber string, payload proto.LocationPayload, excludeConnID string) {
	data, err := proto.MarshalNewLocationUpdatedMessage(busNumber, payload)
	if err != nil {
		log.Errorf("hub could not marshal location-updated message: %v", err)
		return
	}

	h.deliver(busNumber, data, excludeConnID)
}

// NotifyTrackerDisconnected delivers a terminal tracker-disconnected message
// to the bus room. Member connections stay open, the room remains available
// for future claims.
func (h *Hub) NotifyTrackerDisconnected(busNumber string) {
	data, err := proto.MarshalNewTrackerDisconnectedMessage(busNumber)
	if err != nil {
		log.Errorf("hub could not marshal tracker-disconnected message: %v", err)
		return
	}

	h.deliver(busNumber, data, "")
}

func (h *Hub) deliver(busNumber string, data []byte, excludeConnID string) {
	h.RLock()
	room := h.rooms[busNumber]
	members := make([]Client, 0, len(room))
	for connID, c := range room {
		if connID == excludeConnID {
			continue
		}
		members = append(members, c)
	}
	h.RUnlock()

	for _, c := range members {
		if !c.Send(data) {
			log.Warnf("hub dropped a message for slow client '%s' in room '%s'", c.ID(), busNumber)
		}
	}
}

// MemberCount reports the current size of the bus room.
func (h *Hub) MemberCount(busNumber string) int {
	h.RLock()
	defer h.RUnlock()
	return len(h.rooms[busNumber])
}
