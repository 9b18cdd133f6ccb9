package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/infrastructure/persistence/models"
)

// maxReferenceMatches bounds each lookup step of FindByReference
const maxReferenceMatches = 10

// GormLocalOrderRepository implements fulfillment.LocalOrderRepository using GORM
type GormLocalOrderRepository struct {
	db *gorm.DB
}

// NewGormLocalOrderRepository creates a new GormLocalOrderRepository
func NewGormLocalOrderRepository(db *gorm.DB) *GormLocalOrderRepository {
	return &GormLocalOrderRepository{db: db}
}

// FindByID finds an order by id within a tenant
func (r *GormLocalOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.LocalOrder, error) {
	var model models.LocalOrderModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference resolves a warehouse reference across all tenants.
// Webhooks carry no tenant, so the reference alone must identify the order.
func (r *GormLocalOrderRepository) FindByReference(ctx context.Context, ref string) ([]*fulfillment.LocalOrder, error) {
	if ref == "" {
		return nil, nil
	}

	db := r.db.WithContext(ctx)
	var matches []models.LocalOrderModel

	if id, err := uuid.Parse(ref); err == nil {
		var byID []models.LocalOrderModel
		if err := db.Where("id = ?", id).Limit(1).Find(&byID).Error; err != nil {
			return nil, err
		}
		matches = append(matches, byID...)
	}

	var byNumber []models.LocalOrderModel
	if err := db.Where("order_number = ?", ref).Order("created_at").Limit(maxReferenceMatches).Find(&byNumber).Error; err != nil {
		return nil, err
	}
	matches = append(matches, byNumber...)

	var byExternalRef []models.LocalOrderModel
	if err := db.Where("external_ref = ?", ref).Order("created_at").Limit(maxReferenceMatches).Find(&byExternalRef).Error; err != nil {
		return nil, err
	}
	matches = append(matches, byExternalRef...)

	seen := make(map[uuid.UUID]struct{}, len(matches))
	orders := make([]*fulfillment.LocalOrder, 0, len(matches))
	for i := range matches {
		if _, dup := seen[matches[i].ID]; dup {
			continue
		}
		seen[matches[i].ID] = struct{}{}
		orders = append(orders, matches[i].ToDomain())
	}
	return orders, nil
}

// FindWithExternalRef lists a tenant's orders that carry an external reference, newest first
func (r *GormLocalOrderRepository) FindWithExternalRef(ctx context.Context, tenantID uuid.UUID, limit int) ([]fulfillment.LocalOrder, error) {
	var rows []models.LocalOrderModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_ref <> ''", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make([]fulfillment.LocalOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save inserts a new order or updates an existing one with an optimistic
// version check, appending pending history in the same transaction. A stale
// copy fails with shared.ErrConcurrentModification and writes nothing.
func (r *GormLocalOrderRepository) Save(ctx context.Context, order *fulfillment.LocalOrder) error {
	model := models.LocalOrderModelFromDomain(order)
	history := order.PendingHistory()
	nextVersion := order.Version + 1
	inserted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.LocalOrderModel{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"external_ref":    model.ExternalRef,
				"customer_name":   model.CustomerName,
				"country":         model.Country,
				"subtotal":        model.Subtotal,
				"shipping_fee":    model.ShippingFee,
				"discount":        model.Discount,
				"total":           model.Total,
				"cost":            model.Cost,
				"profit":          model.Profit,
				"status":          model.Status,
				"payment_status":  model.PaymentStatus,
				"delivery_status": model.DeliveryStatus,
				"tracking_code":   model.TrackingCode,
				"carrier":         model.Carrier,
				"shipped_at":      model.ShippedAt,
				"delivered_at":    model.DeliveredAt,
				"version":         nextVersion,
				"updated_at":      model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var existing int64
			if err := tx.Model(&models.LocalOrderModel{}).Where("id = ?", order.ID).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return shared.ErrConcurrentModification
			}
			if model.Version == 0 {
				model.Version = 1
			}
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			inserted = true
		}

		if len(history) == 0 {
			return nil
		}
		rows := make([]models.StatusHistoryModel, len(history))
		for i, entry := range history {
			rows[i] = models.StatusHistoryModelFromDomain(entry)
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}

	if inserted {
		order.Version = model.Version
	} else {
		order.IncrementVersion()
	}
	order.ClearPendingHistory()
	return nil
}

// History returns an order's status history, oldest first
func (r *GormLocalOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]fulfillment.StatusHistoryEntry, error) {
	var rows []models.StatusHistoryModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]fulfillment.StatusHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

var _ fulfillment.LocalOrderRepository = (*GormLocalOrderRepository)(nil)
