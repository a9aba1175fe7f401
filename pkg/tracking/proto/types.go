package proto

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type MessageType int

const (
	MessageTypeInvalid             MessageType = 0
	MessageTypeJoinRoom            MessageType = 1
	MessageTypeLeaveRoom           MessageType = 2
	MessageTypeLocationUpdate      MessageType = 3
	MessageTypeError               MessageType = 9
	MessageTypeLocationUpdated     MessageType = 10
	MessageTypeNoTracker           MessageType = 11
	MessageTypeTrackerDisconnected MessageType = 12
)

func (msgType MessageType) String() string {
	names := map[MessageType]string{
		MessageTypeJoinRoom:            "JOIN_ROOM",
		MessageTypeLeaveRoom:           "LEAVE_ROOM",
		MessageTypeLocationUpdate:      "LOCATION_UPDATE",
		MessageTypeError:               "ERROR",
		MessageTypeLocationUpdated:     "LOCATION_UPDATED",
		MessageTypeNoTracker:           "NO_TRACKER",
		MessageTypeTrackerDisconnected: "TRACKER_DISCONNECTED"}

	msgTypeName, ok := names[msgType]
	if !ok {
		return ""
	}

	return msgTypeName
}

// Coordinate is a latitude or longitude in signed degrees. Mobile clients
// send coordinates either as JSON numbers or as numeric strings, both are
// accepted. Non-finite values are rejected during unmarshalling.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case float64:
		*c = Coordinate(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("coordinate '%s' is not numeric", val)
		}
		*c = Coordinate(f)
	default:
		return fmt.Errorf("coordinate must be a number or a numeric string")
	}

	if math.IsNaN(float64(*c)) || math.IsInf(float64(*c), 0) {
		return fmt.Errorf("coordinate must be finite")
	}

	return nil
}

// LocationArgs is the argument dict of an inbound LOCATION_UPDATE message.
type LocationArgs struct {
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty"`
}

// LocationPayload is the argument dict of outbound LOCATION_UPDATED
// messages, including room join snapshots.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type JoinRoomMessage struct {
	BusNumber string
}

type LeaveRoomMessage struct {
	BusNumber string
}

type LocationUpdateMessage struct {
	SessionID string
	Args      LocationArgs
}

type LocationUpdatedMessage struct {
	BusNumber string
	Payload   LocationPayload
}

type NoTrackerMessage struct {
	BusNumber string
}

type TrackerDisconnectedMessage struct {
	BusNumber string
}

type ErrorMessage struct {
	Reason  string
	Details interface{}
}
