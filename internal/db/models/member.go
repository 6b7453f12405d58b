package models

import (
	"slices"
	"time"
)

// RoleTag is the built-in role of a member.
// owner and admin bypass the permission matrix, agent is bound by its assigned role.
type RoleTag string

const (
	// RoleTagOwner is the company owner tag.
	RoleTagOwner RoleTag = "owner"
	// RoleTagAdmin is the administrator tag.
	RoleTagAdmin RoleTag = "admin"
	// RoleTagAgent is the regular member tag.
	RoleTagAgent RoleTag = "agent"
)

// RoleTags returns all known role tags.
func RoleTags() []RoleTag {
	return []RoleTag{RoleTagOwner, RoleTagAdmin, RoleTagAgent}
}

// Valid reports whether t is a known role tag.
func (t RoleTag) Valid() bool {
	return slices.Contains(RoleTags(), t)
}

// Bypass reports whether the tag grants every permission.
func (t RoleTag) Bypass() bool {
	return t == RoleTagOwner || t == RoleTagAdmin
}

// Member is a person acting inside a tenant.
// Credentials live with the identity provider, this record only carries what
// authorization decisions need.
type Member struct {
	// ID is the unique identifier for the member (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// TenantID is the company the member belongs to.
	TenantID string `gorm:"size:36;not null;index;uniqueIndex:idx_members_tenant_email,priority:1" json:"tenantId"`
	// Email is unique within the tenant.
	Email string `gorm:"size:255;not null;uniqueIndex:idx_members_tenant_email,priority:2" json:"email"`
	// Name is the display name.
	Name string `gorm:"size:200" json:"name"`
	// Role is the built-in role tag.
	Role RoleTag `gorm:"type:varchar(20);not null;default:'agent'" json:"role"`
	// RoleID references the assigned custom role. Empty when none is assigned.
	// No foreign key: deleting a role clears this column instead of being blocked.
	RoleID string `gorm:"size:26;index" json:"roleId"`
	// IsOwner marks the tenant owner independently of the role tag.
	IsOwner bool `gorm:"not null;default:false" json:"isOwner"`
	// Active indicates whether the member may act at all.
	Active bool `gorm:"not null" json:"active"`
	// CreatedAt is the timestamp when the member was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the member was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Member model.
func (Member) TableName() string {
	return "members"
}
