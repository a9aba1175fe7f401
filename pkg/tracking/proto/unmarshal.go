package proto

import (
	"encoding/json"
	"fmt"
)

func unmarshalMessageType(v interface{}) (MessageType, error) {
	msgTypes := map[int]MessageType{
		1:  MessageTypeJoinRoom,
		2:  MessageTypeLeaveRoom,
		3:  MessageTypeLocationUpdate,
		9:  MessageTypeError,
		10: MessageTypeLocationUpdated,
		11: MessageTypeNoTracker,
		12: MessageTypeTrackerDisconnected}

	i, ok := v.(float64)
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("tracking: invalid message type given")
	}

	msgType, ok := msgTypes[int(i)]
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("tracking: unknown message type given")
	}

	return msgType, nil
}

func UnmarshalMessage(data []byte) (MessageType, interface{}, error) {
	var envelope []json.RawMessage

	if err := json.Unmarshal(data, &envelope); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("tracking: invalid message data: %s", err.Error())
	}

	if len(envelope) < 1 {
		return MessageTypeInvalid, nil, fmt.Errorf("tracking: message does not contain a message type")
	}

	var rawType interface{}
	if err := json.Unmarshal(envelope[0], &rawType); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("tracking: invalid message type: %s", err.Error())
	}

	msgType, err := unmarshalMessageType(rawType)
	if err != nil {
		return msgType, nil, err
	}

	switch msgType {
	case MessageTypeJoinRoom:
		return unmarshalJoinRoomMessage(envelope)
	case MessageTypeLeaveRoom:
		return unmarshalLeaveRoomMessage(envelope)
	case MessageTypeLocationUpdate:
		return unmarshalLocationUpdateMessage(envelope)
	case MessageTypeError:
		return unmarshalErrorMessage(envelope)
	}

	return MessageTypeInvalid, nil, fmt.Errorf("tracking: message type %s is not accepted from clients", msgType)
}

func unmarshalBusNumber(envelope []json.RawMessage) (string, error) {
	if len(envelope) < 2 {
		return "", fmt.Errorf("message does not contain a bus number")
	}

	var busNumber string
	if err := json.Unmarshal(envelope[1], &busNumber); err != nil {
		return "", fmt.Errorf("bus number is not a string")
	}

	return busNumber, nil
}

func unmarshalJoinRoomMessage(envelope []json.RawMessage) (MessageType, interface{}, error) {
	busNumber, err := unmarshalBusNumber(envelope)
	if err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete join-room message: %s", err.Error())
	}

	return MessageTypeJoinRoom, JoinRoomMessage{BusNumber: busNumber}, nil
}

func unmarshalLeaveRoomMessage(envelope []json.RawMessage) (MessageType, interface{}, error) {
	busNumber, err := unmarshalBusNumber(envelope)
	if err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete leave-room message: %s", err.Error())
	}

	return MessageTypeLeaveRoom, LeaveRoomMessage{BusNumber: busNumber}, nil
}

func unmarshalLocationUpdateMessage(envelope []json.RawMessage) (MessageType, interface{}, error) {
	if len(envelope) < 3 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete location-update message")
	}

	var sessionID string
	if err := json.Unmarshal(envelope[1], &sessionID); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("invalid location-update message: session id is not a string")
	}

	args := LocationArgs{}
	if err := json.Unmarshal(envelope[2], &args); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("invalid location-update message: %s", err.Error())
	}

	return MessageTypeLocationUpdate, LocationUpdateMessage{
		SessionID: sessionID,
		Args:      args,
	}, nil
}

func unmarshalErrorMessage(envelope []json.RawMessage) (MessageType, interface{}, error) {
	if len(envelope) < 2 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete error message")
	}

	var reason string
	if err := json.Unmarshal(envelope[1], &reason); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("invalid error message: reason is not a string")
	}

	m := ErrorMessage{Reason: reason}
	if len(envelope) > 2 {
		var details interface{}
		if err := json.Unmarshal(envelope[2], &details); err == nil {
			m.Details = details
		}
	}

	return MessageTypeError, m, nil
}

func MustJoinRoomMessage(msg interface{}) (*JoinRoomMessage, error) {
	m, ok := msg.(JoinRoomMessage)
	if !ok {
		return nil, fmt.Errorf("message is not a join-room message")
	}
	return &m, nil
}

func MustLeaveRoomMessage(msg interface{}) (*LeaveRoomMessage, error) {
	m, ok := msg.(LeaveRoomMessage)
	if !ok {
		return nil, fmt.Errorf("message is not a leave-room message")
	}
	return &m, nil
}

func MustLocationUpdateMessage(msg interface{}) (*LocationUpdateMessage, error) {
	m, ok := msg.(LocationUpdateMessage)
	if !ok {
		return nil, fmt.Errorf("message is not a location-update message")
	}
	return &m, nil
}
