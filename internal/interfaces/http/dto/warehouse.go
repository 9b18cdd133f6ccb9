package dto

import (
	"time"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// WebhookAck acknowledges a warehouse webhook delivery
type WebhookAck struct {
	Success  bool `json:"success"`
	Received bool `json:"received"`
}

// WarehouseOrderListResponse is the body of GET /warehouse/orders
type WarehouseOrderListResponse struct {
	Success    bool                        `json:"success"`
	Orders     []fulfillment.ExternalOrder `json:"orders"`
	Total      int                         `json:"total"`
	Page       int                         `json:"page"`
	Limit      int                         `json:"limit"`
	LastSyncAt *time.Time                  `json:"lastSyncAt"`
}

// WarehouseSyncRequest is the optional body of POST /warehouse/sync
type WarehouseSyncRequest struct {
	// Since is an RFC 3339 timestamp; malformed values are ignored
	Since string `json:"since"`
}

// WarehouseSyncResponse is the body of POST /warehouse/sync
type WarehouseSyncResponse struct {
	Success    bool                      `json:"success"`
	Status     fulfillment.SyncStatus    `json:"status"`
	Synced     int                       `json:"synced"`
	Errors     int                       `json:"errors"`
	Failures   []fulfillment.SyncFailure `json:"failures,omitempty"`
	LastSyncAt time.Time                 `json:"lastSyncAt"`
}

// WebhookEventsResponse is the body of GET /warehouse/webhooks/events
type WebhookEventsResponse struct {
	Events []fulfillment.WebhookEvent `json:"events"`
	Total  int                        `json:"total"`
}

// SyncJobResponse describes one scheduled warehouse pull
type SyncJobResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Since       *time.Time `json:"since,omitempty"`
	Synced      int        `json:"synced"`
	Failed      int        `json:"failed"`
	RetryCount  int        `json:"retryCount"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// SyncJobsResponse is the body of GET /warehouse/sync/jobs
type SyncJobsResponse struct {
	// Cursor is the lower bound of the next scheduled pull; nil means a full pull
	Cursor *time.Time        `json:"cursor"`
	Jobs   []SyncJobResponse `json:"jobs"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string    `json:"status"`
	Time     time.Time `json:"time"`
	Database string    `json:"database"`
}
