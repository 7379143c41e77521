package websocket

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventAlertsEvaluated EventType = "alerts.evaluated"
	EventConnected       EventType = "connection.ready"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func NewEvent(eventType EventType, data json.RawMessage) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AlertsEvent wraps a published alert batch as received from Redis.
func AlertsEvent(batch []byte) *Event {
	return NewEvent(EventAlertsEvaluated, json.RawMessage(batch))
}
