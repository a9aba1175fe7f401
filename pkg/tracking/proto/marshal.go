package proto

import "encoding/json"

func (m JoinRoomMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypeJoinRoom)
	envelope[1] = m.BusNumber

	return json.Marshal(envelope)
}

func (m LeaveRoomMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypeLeaveRoom)
	envelope[1] = m.BusNumber

	return json.Marshal(envelope)
}

func (m LocationUpdateMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeLocationUpdate)
	envelope[1] = m.SessionID
	envelope[2] = m.Args

	return json.Marshal(envelope)
}

func (m LocationUpdatedMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeLocationUpdated)
	envelope[1] = m.BusNumber
	envelope[2] = m.Payload

	return json.Marshal(envelope)
}

func (m NoTrackerMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypeNoTracker)
	envelope[1] = m.BusNumber

	return json.Marshal(envelope)
}

func (m TrackerDisconnectedMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypeTrackerDisconnected)
	envelope[1] = m.BusNumber

	return json.Marshal(envelope)
}

func (m ErrorMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeError)
	envelope[1] = m.Reason
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func MarshalNewLocationUpdatedMessage(busNumber string, payload LocationPayload) ([]byte, error) {
	m := LocationUpdatedMessage{
		BusNumber: busNumber,
		Payload:   payload,
	}
	return m.Marshal()
}

func MarshalNewNoTrackerMessage(busNumber string) ([]byte, error) {
	m := NoTrackerMessage{
		BusNumber: busNumber,
	}
	return m.Marshal()
}

func MarshalNewTrackerDisconnectedMessage(busNumber string) ([]byte, error) {
	m := TrackerDisconnectedMessage{
		BusNumber: busNumber,
	}
	return m.Marshal()
}

func MarshalNewErrorMessage(reason string, details interface{}) ([]byte, error) {
	m := ErrorMessage{
		Reason:  reason,
		Details: details,
	}
	return m.Marshal()
}

func ensureEmptyDictIfNil(v interface{}) interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}
