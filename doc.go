// Package main provides the entry point of the DeskHub authorization service.
// It serves the role management API and the access decisions for every
// company using the dashboard, backed by gorm and the fiber web framework.
package main
