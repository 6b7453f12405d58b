package models

import "time"

// Role is a named, tenant scoped set of permissions.
// Members reference a role by ID; the built-in owner and admin tags bypass roles entirely.
type Role struct {
	// ID is the opaque, immutable role identifier (ULID).
	ID string `gorm:"primaryKey;size:26" json:"id"`
	// TenantID is the company the role belongs to.
	TenantID string `gorm:"size:36;not null;uniqueIndex:idx_roles_tenant_name,priority:1;index" json:"tenantId"`
	// Name is unique within the tenant.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_roles_tenant_name,priority:2" json:"name"`
	// Description is an optional free text.
	Description string `gorm:"size:255" json:"description"`
	// Permissions granted by this role, one entry per resource.
	Permissions Permissions `gorm:"serializer:json;type:text;not null" json:"permissions"`
	// IsDefault marks the role new members receive. At most one per tenant.
	IsDefault bool `gorm:"not null;default:false" json:"isDefault"`
	// CreatedAt is set once on creation (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is refreshed on every update (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
