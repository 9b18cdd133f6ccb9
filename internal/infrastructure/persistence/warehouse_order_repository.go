package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/infrastructure/persistence/models"
)

// mirrorColumns are refreshed on every upsert of a warehouse order
var mirrorColumns = []string{
	"reference", "status", "status_label", "tracking_code", "carrier",
	"country", "customer_name", "cod_amount", "remote_updated_at",
	"last_sync_at", "updated_at",
}

// GormExternalOrderRepository implements fulfillment.ExternalOrderRepository using GORM
type GormExternalOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormExternalOrderRepository creates a new GormExternalOrderRepository
func NewGormExternalOrderRepository(db *gorm.DB) *GormExternalOrderRepository {
	return &GormExternalOrderRepository{db: db, now: time.Now}
}

// UpsertExternalOrder inserts or refreshes the mirror keyed by external id.
// It is the sink the bulk sync writes through.
func (r *GormExternalOrderRepository) UpsertExternalOrder(ctx context.Context, order *fulfillment.ExternalOrder) error {
	if order.ExternalID == "" {
		return fulfillment.ErrExternalIDRequired
	}

	now := r.now()
	if order.LastSyncAt == nil {
		order.LastSyncAt = &now
	}

	model := models.WarehouseOrderModelFromDomain(order)
	model.ID = uuid.New()
	model.CreatedAt = now
	model.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(mirrorColumns),
	}).Create(model).Error
}

// FindByExternalID returns the mirror for a warehouse order id
func (r *GormExternalOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*fulfillment.ExternalOrder, error) {
	var model models.WarehouseOrderModel
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates an existing mirror; missing mirrors yield shared.ErrNotFound
func (r *GormExternalOrderRepository) Save(ctx context.Context, order *fulfillment.ExternalOrder) error {
	model := models.WarehouseOrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(&models.WarehouseOrderModel{}).
		Where("external_id = ?", order.ExternalID).
		Updates(map[string]any{
			"reference":     model.Reference,
			"status":        model.Status,
			"status_label":  model.StatusLabel,
			"tracking_code": model.TrackingCode,
			"carrier":       model.Carrier,
			"last_sync_at":  model.LastSyncAt,
			"updated_at":    r.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ fulfillment.ExternalOrderRepository = (*GormExternalOrderRepository)(nil)
