package fulfillment

import (
	"context"
	"strings"
	"time"
)

// Mode tells callers which warehouse backend is active
type Mode string

const (
	ModeProduction Mode = "production"
	ModeDemo       Mode = "demo"
)

const (
	DefaultOrderPageSize = 50
	MaxOrderPageSize     = 100
)

// OrderFilter selects a page of warehouse orders
type OrderFilter struct {
	Page    int
	Limit   int
	Status  string
	Country string
	// Since is an inclusive lower bound on last-modified time. Nil means all.
	Since *time.Time
}

// Normalize replaces out-of-range paging values with defaults
func (f OrderFilter) Normalize() OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultOrderPageSize
	}
	if f.Limit > MaxOrderPageSize {
		f.Limit = MaxOrderPageSize
	}
	return f
}

// Matches reports whether an order passes the status, country and since filters
func (f OrderFilter) Matches(o *ExternalOrder) bool {
	if f.Status != "" && o.Status != NormalizeExternalStatus(f.Status) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(o.Country, f.Country) {
		return false
	}
	if f.Since != nil && o.UpdatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// OrderPage is one page of normalized warehouse orders
type OrderPage struct {
	Orders []ExternalOrder
	Total  int
	Page   int
	Limit  int
}

// HasMore returns true if further pages exist
func (p *OrderPage) HasMore() bool {
	return p.Page*p.Limit < p.Total
}

// SyncStatus is the overall outcome of a sync pass
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// SyncFailure describes one order that could not be stored
type SyncFailure struct {
	ExternalID string `json:"externalId"`
	Message    string `json:"message"`
}

// SyncResult aggregates a pull-and-reconcile pass
type SyncResult struct {
	Status     SyncStatus    `json:"status"`
	Synced     int           `json:"synced"`
	Errors     int           `json:"errors"`
	Failures   []SyncFailure `json:"failures,omitempty"`
	LastSyncAt time.Time     `json:"lastSyncAt"`
}

// Finish derives Status from the counters
func (r *SyncResult) Finish(at time.Time) {
	r.LastSyncAt = at
	switch {
	case r.Errors == 0:
		r.Status = SyncStatusSuccess
	case r.Synced > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
}

// ConnectionCheck is the result of a reachability and credentials check
type ConnectionCheck struct {
	Connected bool
	Message   string
}

// OrderSink receives each order pulled during a sync pass
type OrderSink interface {
	UpsertExternalOrder(ctx context.Context, order *ExternalOrder) error
}

// WarehouseClient is the port to the external warehouse.
// Implementations must be safe for concurrent use and keep no per-call state.
type WarehouseClient interface {
	// GetOrders returns one page of orders matching the filter
	GetOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error)

	// SyncOrders pulls every order modified since the given time and hands each
	// to sink. Individual sink failures are counted, never fatal.
	SyncOrders(ctx context.Context, since *time.Time, sink OrderSink) (*SyncResult, error)

	// TestConnection probes reachability and credentials. It never fails.
	TestConnection(ctx context.Context) ConnectionCheck

	// VerifyWebhookSignature returns false for any malformed or mismatched input
	VerifyWebhookSignature(rawBody []byte, signature string) bool

	// Mode reports whether the client talks to the real warehouse
	Mode() Mode
}
