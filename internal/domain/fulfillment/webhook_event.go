package fulfillment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventKind is the closed set of warehouse notifications the ingestor understands
type EventKind string

const (
	EventOrderCreated       EventKind = "order.created"
	EventOrderUpdated       EventKind = "order.updated"
	EventOrderStatusChanged EventKind = "order.status_changed"
	EventOrderShipped       EventKind = "order.shipped"
	EventOrderDelivered     EventKind = "order.delivered"
	EventUnknown            EventKind = "unknown"
)

// AllEventKinds lists every dispatchable kind. EventUnknown is not dispatchable.
var AllEventKinds = []EventKind{
	EventOrderCreated,
	EventOrderUpdated,
	EventOrderStatusChanged,
	EventOrderShipped,
	EventOrderDelivered,
}

// String returns the string representation of EventKind
func (k EventKind) String() string {
	return string(k)
}

// IsKnown returns true for every kind except EventUnknown
func (k EventKind) IsKnown() bool {
	for _, known := range AllEventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseEventKind accepts both dotted ("order.shipped") and underscored
// ("order_shipped") spellings. Anything else is EventUnknown.
func ParseEventKind(raw string) EventKind {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if rest, ok := strings.CutPrefix(normalized, "order_"); ok {
		normalized = "order." + rest
	}
	kind := EventKind(normalized)
	if kind.IsKnown() {
		return kind
	}
	return EventUnknown
}

// WebhookPayload is the signed JSON body sent by the warehouse
type WebhookPayload struct {
	Event string           `json:"event" validate:"required,max=64"`
	Data  WebhookOrderData `json:"data" validate:"required"`
}

// WebhookOrderData carries the order identity, reference and status fields
type WebhookOrderData struct {
	OrderID      string `json:"orderId" validate:"required,max=128"`
	ExternalRef  string `json:"externalRef,omitempty" validate:"max=128"`
	Status       string `json:"status" validate:"max=64"`
	StatusLabel  string `json:"statusLabel,omitempty" validate:"max=255"`
	TrackingCode string `json:"trackingCode,omitempty" validate:"max=128"`
	CarrierName  string `json:"carrierName,omitempty" validate:"max=128"`
}

// StatusUpdate extracts the fields that refresh an ExternalOrder mirror
func (d WebhookOrderData) StatusUpdate() ExternalStatusUpdate {
	return ExternalStatusUpdate{
		StatusCode:   d.Status,
		StatusLabel:  d.StatusLabel,
		TrackingCode: d.TrackingCode,
		Carrier:      d.CarrierName,
	}
}

// EventOutcome records what the ingestor did with a delivery
type EventOutcome string

const (
	EventOutcomeProcessed EventOutcome = "processed"
	EventOutcomeIgnored   EventOutcome = "ignored"
	EventOutcomeDuplicate EventOutcome = "duplicate"
	EventOutcomeFailed    EventOutcome = "failed"
)

// WebhookEvent is the immutable record of one inbound notification
type WebhookEvent struct {
	ID         uuid.UUID       `json:"id"`
	Kind       EventKind       `json:"kind"`
	RawType    string          `json:"type"`
	OrderID    string          `json:"orderId,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Outcome    EventOutcome    `json:"outcome"`
	Error      string          `json:"error,omitempty"`
}
