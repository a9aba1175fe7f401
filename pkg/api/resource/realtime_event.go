package resource

type RealtimeEventResource struct {
	BusNumber string      `json:"busNumber"`
	Topic     string      `json:"topic"`
	Data      interface{} `json:"data"`
}

func NewRealtimeEvent(busNumber, topic string, data interface{}) *RealtimeEventResource {
	return &RealtimeEventResource{
		BusNumber: busNumber,
		Topic:     topic,
		Data:      data,
	}
}
