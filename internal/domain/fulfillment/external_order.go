package fulfillment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalStatus is the normalized warehouse order status
type ExternalStatus string

const (
	ExternalStatusPending    ExternalStatus = "PENDING"
	ExternalStatusProcessing ExternalStatus = "PROCESSING"
	ExternalStatusShipped    ExternalStatus = "SHIPPED"
	ExternalStatusDelivered  ExternalStatus = "DELIVERED"
	ExternalStatusReturned   ExternalStatus = "RETURNED"
	ExternalStatusCancelled  ExternalStatus = "CANCELLED"
	ExternalStatusUnknown    ExternalStatus = "UNKNOWN"
)

// String returns the string representation of ExternalStatus
func (s ExternalStatus) String() string {
	return string(s)
}

// IsFinal returns true if the warehouse will not move the order any further
func (s ExternalStatus) IsFinal() bool {
	return s == ExternalStatusDelivered || s == ExternalStatusReturned || s == ExternalStatusCancelled
}

// Label returns the default human label for the status
func (s ExternalStatus) Label() string {
	switch s {
	case ExternalStatusPending:
		return "Pending"
	case ExternalStatusProcessing:
		return "Processing"
	case ExternalStatusShipped:
		return "Shipped"
	case ExternalStatusDelivered:
		return "Delivered"
	case ExternalStatusReturned:
		return "Returned"
	case ExternalStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// warehouseStatusCodes maps the warehouse status vocabulary onto ExternalStatus
var warehouseStatusCodes = map[string]ExternalStatus{
	"new":              ExternalStatusPending,
	"pending":          ExternalStatusPending,
	"confirmed":        ExternalStatusProcessing,
	"processing":       ExternalStatusProcessing,
	"packed":           ExternalStatusProcessing,
	"shipped":          ExternalStatusShipped,
	"in_transit":       ExternalStatusShipped,
	"out_for_delivery": ExternalStatusShipped,
	"delivered":        ExternalStatusDelivered,
	"returned":         ExternalStatusReturned,
	"cancelled":        ExternalStatusCancelled,
	"canceled":         ExternalStatusCancelled,
}

// NormalizeExternalStatus maps a raw warehouse status code onto ExternalStatus.
// Unrecognized codes become ExternalStatusUnknown.
func NormalizeExternalStatus(code string) ExternalStatus {
	key := strings.ToLower(strings.TrimSpace(code))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if status, ok := warehouseStatusCodes[key]; ok {
		return status
	}
	// already-normalized values round-trip
	switch status := ExternalStatus(strings.ToUpper(key)); status {
	case ExternalStatusPending, ExternalStatusProcessing, ExternalStatusShipped,
		ExternalStatusDelivered, ExternalStatusReturned, ExternalStatusCancelled:
		return status
	}
	return ExternalStatusUnknown
}

// ExternalOrder mirrors a warehouse order. It is a cache, not a source of truth
// for business state.
type ExternalOrder struct {
	ExternalID   string          `json:"externalId"`
	Reference    string          `json:"reference,omitempty"`
	Status       ExternalStatus  `json:"status"`
	StatusLabel  string          `json:"statusLabel"`
	TrackingCode string          `json:"trackingCode,omitempty"`
	Carrier      string          `json:"carrier,omitempty"`
	Country      string          `json:"country,omitempty"`
	CustomerName string          `json:"customerName,omitempty"`
	CODAmount    decimal.Decimal `json:"codAmount"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	LastSyncAt   *time.Time      `json:"lastSyncAt,omitempty"`
}

// ExternalStatusUpdate carries the status fields of a warehouse notification
type ExternalStatusUpdate struct {
	StatusCode   string
	StatusLabel  string
	TrackingCode string
	Carrier      string
}

// ApplyStatusUpdate refreshes the mirror from a warehouse notification
func (e *ExternalOrder) ApplyStatusUpdate(u ExternalStatusUpdate, now time.Time) {
	if u.StatusCode != "" {
		e.Status = NormalizeExternalStatus(u.StatusCode)
	}
	switch {
	case u.StatusLabel != "":
		e.StatusLabel = u.StatusLabel
	case u.StatusCode != "":
		e.StatusLabel = e.Status.Label()
	}
	if u.TrackingCode != "" {
		e.TrackingCode = u.TrackingCode
	}
	if u.Carrier != "" {
		e.Carrier = u.Carrier
	}
	e.LastSyncAt = &now
}

// MatchesReference reports whether ref identifies this warehouse order
func (e *ExternalOrder) MatchesReference(ref string) bool {
	if ref == "" {
		return false
	}
	return e.ExternalID == ref || e.Reference == ref
}
