package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// LocalOrderRepository persists local orders and their status history
type LocalOrderRepository interface {
	// FindByID returns shared.ErrNotFound when the order does not exist in the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LocalOrder, error)

	// FindByReference returns every order identified by ref, in match priority:
	// exact id, then order number, then external reference. Each order appears once.
	FindByReference(ctx context.Context, ref string) ([]*LocalOrder, error)

	// FindWithExternalRef lists a tenant's orders that carry an external reference
	FindWithExternalRef(ctx context.Context, tenantID uuid.UUID, limit int) ([]LocalOrder, error)

	// Save creates or updates the order and appends its pending history entries
	// atomically. Updating a copy whose Version is no longer current fails with
	// shared.ErrConcurrentModification; on success Version reflects the stored row.
	Save(ctx context.Context, order *LocalOrder) error

	// History returns an order's status history, oldest first
	History(ctx context.Context, orderID uuid.UUID) ([]StatusHistoryEntry, error)
}

// ExternalOrderRepository persists the warehouse order mirror
type ExternalOrderRepository interface {
	OrderSink

	// FindByExternalID returns shared.ErrNotFound when no mirror exists
	FindByExternalID(ctx context.Context, externalID string) (*ExternalOrder, error)

	// Save updates an existing mirror
	Save(ctx context.Context, order *ExternalOrder) error
}
