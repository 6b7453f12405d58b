package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/db/models"
)

func agentPermissions() models.Permissions {
	return models.Permissions{
		{Resource: models.ResourceDashboard, Actions: []models.Action{models.ActionRead}},
		{Resource: models.ResourceConversations, Actions: []models.Action{models.ActionRead, models.ActionWrite}},
		// write without read does not show the section
		{Resource: models.ResourceTemplates, Actions: []models.Action{models.ActionWrite}},
		// manage does not imply read
		{Resource: models.ResourceSettings, Actions: []models.Action{models.ActionManage}},
	}
}

func keys(c *Context) []string {
	out := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		out = append(out, s.Key)
	}

	return out
}

func TestBuild(t *testing.T) {
	testCases := []struct {
		name     string
		actor    auth.Actor
		perms    models.Permissions
		expected []string
	}{
		{
			name:     "agent sees readable sections only",
			actor:    auth.Actor{ID: "m1", Role: models.RoleTagAgent, RoleID: "r1"},
			perms:    agentPermissions(),
			expected: []string{"dashboard", "inbox"},
		},
		{
			name:     "agent without permissions sees nothing",
			actor:    auth.Actor{ID: "m2", Role: models.RoleTagAgent},
			expected: []string{},
		},
		{
			name:  "admin sees everything",
			actor: auth.Actor{ID: "m3", Role: models.RoleTagAdmin},
			expected: []string{
				"dashboard", "inbox", "contacts", "templates", "automations", "integrations", "analytics", "settings",
			},
		},
		{
			name:  "owner flag sees everything",
			actor: auth.Actor{ID: "m4", Role: models.RoleTagAgent, IsOwner: true},
			expected: []string{
				"dashboard", "inbox", "contacts", "templates", "automations", "integrations", "analytics", "settings",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nav := Build(tc.actor, tc.perms, "dashboard")

			assert.Equal(t, tc.expected, keys(nav))
			assert.True(t, nav.IsSectionActive("dashboard"))
			assert.NotNil(t, nav.Breadcrumbs)
		})
	}
}

func TestBuildSectionActions(t *testing.T) {
	nav := Build(auth.Actor{ID: "m1", Role: models.RoleTagAgent}, agentPermissions(), "inbox")

	assert.True(t, nav.Visible("inbox"))
	assert.False(t, nav.Visible("settings"))
	assert.Equal(t, []models.Action{models.ActionRead, models.ActionWrite}, nav.Sections[1].Actions)
}

func TestMatrix(t *testing.T) {
	m := Matrix(auth.Actor{ID: "m1", Role: models.RoleTagAgent}, agentPermissions())

	assert.Len(t, m, 4)
	assert.Equal(t, []models.Action{models.ActionManage}, m[models.ResourceSettings])
	assert.NotContains(t, m, models.ResourceAnalytics)

	admin := Matrix(auth.Actor{ID: "m3", Role: models.RoleTagAdmin}, nil)
	assert.Len(t, admin, len(models.Resources()))

	for _, actions := range admin {
		assert.Equal(t, models.Actions(), actions)
	}
}

func TestEmpty(t *testing.T) {
	nav := Empty()

	assert.Empty(t, nav.Sections)
	assert.NotNil(t, nav.Sections)
	assert.False(t, nav.Visible("dashboard"))
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := Empty().
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Settings", "/settings", false).
		AddBreadcrumb("Roles", "/settings/roles", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/settings", ctx.Breadcrumbs[1].URL)
	assert.True(t, ctx.Breadcrumbs[2].Active)
	assert.False(t, ctx.Breadcrumbs[0].Active)
}
