package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// WarehouseOrderModel mirrors a warehouse order. Rows are keyed by the
// warehouse's own id and are never tenant scoped.
type WarehouseOrderModel struct {
	ID              uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	ExternalID      string                     `gorm:"type:varchar(128);not null;uniqueIndex"`
	Reference       string                     `gorm:"type:varchar(128);index"`
	Status          fulfillment.ExternalStatus `gorm:"type:varchar(20);not null"`
	StatusLabel     string                     `gorm:"type:varchar(100)"`
	TrackingCode    string                     `gorm:"type:varchar(128)"`
	Carrier         string                     `gorm:"type:varchar(100)"`
	Country         string                     `gorm:"type:varchar(8)"`
	CustomerName    string                     `gorm:"type:varchar(200)"`
	CODAmount       decimal.Decimal            `gorm:"column:cod_amount;type:decimal(18,2);not null"`
	RemoteUpdatedAt time.Time                  `gorm:"column:remote_updated_at"`
	LastSyncAt      *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WarehouseOrderModel) TableName() string {
	return "warehouse_orders"
}

// WarehouseOrderModelFromDomain creates a persistence model from the mirror
func WarehouseOrderModelFromDomain(o *fulfillment.ExternalOrder) *WarehouseOrderModel {
	return &WarehouseOrderModel{
		ExternalID:      o.ExternalID,
		Reference:       o.Reference,
		Status:          o.Status,
		StatusLabel:     o.StatusLabel,
		TrackingCode:    o.TrackingCode,
		Carrier:         o.Carrier,
		Country:         o.Country,
		CustomerName:    o.CustomerName,
		CODAmount:       o.CODAmount,
		RemoteUpdatedAt: o.UpdatedAt,
		LastSyncAt:      o.LastSyncAt,
	}
}

// ToDomain converts the model to the mirror
func (m *WarehouseOrderModel) ToDomain() *fulfillment.ExternalOrder {
	return &fulfillment.ExternalOrder{
		ExternalID:   m.ExternalID,
		Reference:    m.Reference,
		Status:       m.Status,
		StatusLabel:  m.StatusLabel,
		TrackingCode: m.TrackingCode,
		Carrier:      m.Carrier,
		Country:      m.Country,
		CustomerName: m.CustomerName,
		CODAmount:    m.CODAmount,
		UpdatedAt:    m.RemoteUpdatedAt,
		LastSyncAt:   m.LastSyncAt,
	}
}
