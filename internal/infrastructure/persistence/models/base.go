package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/codops/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TenantModel adds tenant ownership and version to BaseModel
type TenantModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Version  int       `gorm:"not null;default:1"`
}

// FromDomain populates TenantModel from a domain TenantEntity
func (m *TenantModel) FromDomain(e shared.TenantEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
	m.TenantID = e.TenantID
	m.Version = e.Version
}

// ToDomain converts TenantModel to a domain TenantEntity
func (m *TenantModel) ToDomain() shared.TenantEntity {
	return shared.TenantEntity{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: m.TenantID,
		Version:  m.Version,
	}
}

// All returns every model managed by gorm auto-migration
func All() []any {
	return []any{
		&LocalOrderModel{},
		&StatusHistoryModel{},
		&WarehouseOrderModel{},
	}
}
