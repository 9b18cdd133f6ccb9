package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// HistorySourceWarehouse marks entries appended by warehouse reconciliation.
const HistorySourceWarehouse = "warehouse_webhook"

// StatusHistoryEntry is one append-only audit row of a local order status transition
type StatusHistoryEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	OrderID    uuid.UUID
	FromStatus OrderStatus
	ToStatus   OrderStatus
	Note       string
	Source     string
	CreatedAt  time.Time
}

func newStatusHistoryEntry(o *LocalOrder, from, to OrderStatus, note string, at time.Time) StatusHistoryEntry {
	return StatusHistoryEntry{
		ID:         uuid.New(),
		TenantID:   o.TenantID,
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		Source:     HistorySourceWarehouse,
		CreatedAt:  at,
	}
}
