package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// LocalOrderModel is the persistence model for fulfillment.LocalOrder
type LocalOrderModel struct {
	TenantModel
	OrderNumber    string                     `gorm:"type:varchar(64);not null;index"`
	ExternalRef    string                     `gorm:"type:varchar(128);index"`
	CustomerName   string                     `gorm:"type:varchar(200)"`
	Country        string                     `gorm:"type:varchar(8)"`
	Subtotal       decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	ShippingFee    decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Discount       decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Total          decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Cost           decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Profit         decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Status         fulfillment.OrderStatus    `gorm:"type:varchar(20);not null;index"`
	PaymentStatus  fulfillment.PaymentStatus  `gorm:"type:varchar(20);not null"`
	DeliveryStatus fulfillment.DeliveryStatus `gorm:"type:varchar(20);not null"`
	TrackingCode   string                     `gorm:"type:varchar(128)"`
	Carrier        string                     `gorm:"type:varchar(100)"`
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
}

// TableName returns the table name for GORM
func (LocalOrderModel) TableName() string {
	return "local_orders"
}

// LocalOrderModelFromDomain creates a persistence model from the aggregate
func LocalOrderModelFromDomain(o *fulfillment.LocalOrder) *LocalOrderModel {
	m := &LocalOrderModel{
		OrderNumber:    o.OrderNumber,
		ExternalRef:    o.ExternalRef,
		CustomerName:   o.CustomerName,
		Country:        o.Country,
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		Discount:       o.Discount,
		Total:          o.Total,
		Cost:           o.Cost,
		Profit:         o.Profit,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		DeliveryStatus: o.DeliveryStatus,
		TrackingCode:   o.TrackingCode,
		Carrier:        o.Carrier,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
	}
	m.TenantModel.FromDomain(o.TenantEntity)
	return m
}

// ToDomain converts the model to the aggregate
func (m *LocalOrderModel) ToDomain() *fulfillment.LocalOrder {
	return &fulfillment.LocalOrder{
		TenantEntity:   m.TenantModel.ToDomain(),
		OrderNumber:    m.OrderNumber,
		ExternalRef:    m.ExternalRef,
		CustomerName:   m.CustomerName,
		Country:        m.Country,
		Subtotal:       m.Subtotal,
		ShippingFee:    m.ShippingFee,
		Discount:       m.Discount,
		Total:          m.Total,
		Cost:           m.Cost,
		Profit:         m.Profit,
		Status:         m.Status,
		PaymentStatus:  m.PaymentStatus,
		DeliveryStatus: m.DeliveryStatus,
		TrackingCode:   m.TrackingCode,
		Carrier:        m.Carrier,
		ShippedAt:      m.ShippedAt,
		DeliveredAt:    m.DeliveredAt,
	}
}

// StatusHistoryModel is one row of local_order_status_history
type StatusHistoryModel struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	OrderID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	FromStatus fulfillment.OrderStatus `gorm:"type:varchar(20);not null"`
	ToStatus   fulfillment.OrderStatus `gorm:"type:varchar(20);not null"`
	Note       string                  `gorm:"type:text"`
	Source     string                  `gorm:"type:varchar(50);not null"`
	CreatedAt  time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StatusHistoryModel) TableName() string {
	return "local_order_status_history"
}

// StatusHistoryModelFromDomain creates a persistence model from a history entry
func StatusHistoryModelFromDomain(e fulfillment.StatusHistoryEntry) StatusHistoryModel {
	return StatusHistoryModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		OrderID:    e.OrderID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Note:       e.Note,
		Source:     e.Source,
		CreatedAt:  e.CreatedAt,
	}
}

// ToDomain converts the model to a history entry
func (m *StatusHistoryModel) ToDomain() fulfillment.StatusHistoryEntry {
	return fulfillment.StatusHistoryEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		OrderID:    m.OrderID,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Note:       m.Note,
		Source:     m.Source,
		CreatedAt:  m.CreatedAt,
	}
}
