package orders

import (
	"encoding/json"
	"time"
)

const (
	EventTrackingUpdated = "OrderTrackingUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// TrackingNotification is what the bridge announces after a tracking event
// is appended.
type TrackingNotification struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Notes       string `json:"notes,omitempty"`
	UserID      string `json:"userId,omitempty"`
}
