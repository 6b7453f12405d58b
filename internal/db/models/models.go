// Package models holds the gorm models of the authorization core.
package models

// All returns every model for migrations.
func All() []any {
	return []any{
		&Tenant{},
		&Member{},
		&Role{},
	}
}
