// Package navigation computes which dashboard regions an actor may see.
package navigation

import (
	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/db/models"
)

// Section is a region of the dashboard shown to actors allowed to read its resource.
type Section struct {
	Key      string          `json:"key"`
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	Resource models.Resource `json:"resource"`
	// Actions the actor may perform inside the section, used for conditional controls.
	Actions []models.Action `json:"actions"`
}

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string           `json:"activeSection"`
	Sections      []Section        `json:"sections"`
	Breadcrumbs   []BreadcrumbItem `json:"breadcrumbs"`
}

// catalog lists every region in menu order.
var catalog = []Section{
	{Key: "dashboard", Title: "Dashboard", URL: "/dashboard", Resource: models.ResourceDashboard},
	{Key: "inbox", Title: "Inbox", URL: "/inbox", Resource: models.ResourceConversations},
	{Key: "contacts", Title: "Contacts", URL: "/contacts", Resource: models.ResourceContacts},
	{Key: "templates", Title: "Templates", URL: "/templates", Resource: models.ResourceTemplates},
	{Key: "automations", Title: "Automations", URL: "/automations", Resource: models.ResourceAutomations},
	{Key: "integrations", Title: "Integrations", URL: "/integrations", Resource: models.ResourceIntegrations},
	{Key: "analytics", Title: "Analytics", URL: "/analytics", Resource: models.ResourceAnalytics},
	{Key: "settings", Title: "Settings", URL: "/settings", Resource: models.ResourceSettings},
}

// Matrix returns the effective actions of actor per resource.
// Resources without any allowed action are left out.
func Matrix(actor auth.Actor, perms models.Permissions) map[models.Resource][]models.Action {
	out := make(map[models.Resource][]models.Action)

	for _, r := range models.Resources() {
		var allowed []models.Action

		for _, a := range models.Actions() {
			if auth.Decide(actor, perms, r, a) == auth.Allow {
				allowed = append(allowed, a)
			}
		}

		if len(allowed) > 0 {
			out[r] = allowed
		}
	}

	return out
}

// Build returns the sections actor may read, marking active as the current one.
func Build(actor auth.Actor, perms models.Permissions, active string) *Context {
	matrix := Matrix(actor, perms)

	c := &Context{
		ActiveSection: active,
		Sections:      make([]Section, 0, len(catalog)),
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}

	for _, s := range catalog {
		if auth.Decide(actor, perms, s.Resource, models.ActionRead) == auth.Deny {
			continue
		}

		s.Actions = matrix[s.Resource]
		c.Sections = append(c.Sections, s)
	}

	return c
}

// Empty is the navigation shown when the dashboard itself is denied.
func Empty() *Context {
	return &Context{
		Sections:    []Section{},
		Breadcrumbs: []BreadcrumbItem{},
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// Visible reports whether the section with key is part of the context.
func (c *Context) Visible(key string) bool {
	for _, s := range c.Sections {
		if s.Key == key {
			return true
		}
	}

	return false
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
