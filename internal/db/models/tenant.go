package models

import "time"

// Tenant is a company using the dashboard. Roles and members never cross tenants.
type Tenant struct {
	// ID is the unique identifier for the tenant (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// Name of the company.
	Name string `gorm:"size:200;not null" json:"name"`
	// CreatedAt is the timestamp when the tenant was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the Tenant model.
func (Tenant) TableName() string {
	return "tenants"
}
