package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch bumps UpdatedAt.
func (e *BaseEntity) Touch(now time.Time) {
	e.UpdatedAt = now
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TenantEntity is a BaseEntity owned by exactly one workspace (tenant).
type TenantEntity struct {
	BaseEntity
	TenantID uuid.UUID
	Version  int
}

// NewTenantEntity creates a new tenant-scoped entity at version 1
func NewTenantEntity(tenantID uuid.UUID) TenantEntity {
	return TenantEntity{
		BaseEntity: NewBaseEntity(),
		TenantID:   tenantID,
		Version:    1,
	}
}

// IncrementVersion increments the version number
func (t *TenantEntity) IncrementVersion() {
	t.Version++
}
