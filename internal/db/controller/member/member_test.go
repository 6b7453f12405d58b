package member

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/db/controller/role"
	"github.com/deskhub/deskhub/internal/db/dbtest"
	"github.com/deskhub/deskhub/internal/db/models"
)

const (
	tenantA = "7d9c2a4e-3b0f-4f8e-9a51-1c2d3e4f5a6b"
	tenantB = "0f1e2d3c-4b5a-4968-8776-655443322110"
)

func setup(t *testing.T) (*Store, *role.Store) {
	t.Helper()

	db := dbtest.Open(t)
	dbtest.Tenant(t, db, tenantA, "Acme")
	dbtest.Tenant(t, db, tenantB, "Globex")

	roles, err := role.New(db)
	require.NoError(t, err)

	members, err := New(db, roles)
	require.NoError(t, err)

	return members, roles
}

func dashboardRole(t *testing.T, roles *role.Store, tenantID, name string, isDefault bool) *models.Role {
	t.Helper()

	r, err := roles.Create(context.Background(), tenantID, role.CreateInput{
		Name:        name,
		Permissions: models.Permissions{{Resource: models.ResourceDashboard, Actions: []models.Action{models.ActionRead}}},
		IsDefault:   isDefault,
	})
	require.NoError(t, err)

	return r
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = New(dbtest.Open(t), nil)
	require.ErrorIs(t, err, ErrRolesNil)
}

func TestCreateAssignsDefaultRole(t *testing.T) {
	ctx := context.Background()
	members, roles := setup(t)

	def := dashboardRole(t, roles, tenantA, "Agent", true)

	m, err := members.Create(ctx, tenantA, CreateInput{Email: " Jane@Acme.test ", Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.test", m.Email)
	assert.Equal(t, models.RoleTagAgent, m.Role)
	assert.Equal(t, def.ID, m.RoleID)
	assert.True(t, m.Active)

	_, err = members.Create(ctx, tenantA, CreateInput{Email: "jane@acme.test"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateWithoutDefaultRole(t *testing.T) {
	members, _ := setup(t)

	m, err := members.Create(context.Background(), tenantA, CreateInput{Email: "joe@acme.test"})
	require.NoError(t, err)
	assert.Empty(t, m.RoleID)
}

func TestCreateValidation(t *testing.T) {
	testCases := []struct {
		name string
		in   CreateInput
	}{
		{name: "missing email", in: CreateInput{}},
		{name: "bad email", in: CreateInput{Email: "nope"}},
		{name: "unknown role tag", in: CreateInput{Email: "a@acme.test", Role: "superuser"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			members, _ := setup(t)

			_, err := members.Create(context.Background(), tenantA, tc.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()
	members, roles := setup(t)

	support := dashboardRole(t, roles, tenantA, "Support", false)
	foreign := dashboardRole(t, roles, tenantB, "Support", false)

	m, err := members.Create(ctx, tenantA, CreateInput{Email: "jane@acme.test"})
	require.NoError(t, err)

	testCases := []struct {
		name          string
		memberID      string
		roleID        string
		expectedError error
	}{
		{name: "unknown member", memberID: "missing", roleID: support.ID, expectedError: apperr.ErrNotFound},
		{name: "role of another tenant", memberID: m.ID, roleID: foreign.ID, expectedError: apperr.ErrNotFound},
		{name: "assign", memberID: m.ID, roleID: support.ID},
		{name: "unassign", memberID: m.ID, roleID: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := members.AssignRole(ctx, tenantA, tc.memberID, tc.roleID)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.roleID, got.RoleID)

			reloaded, err := members.Get(ctx, tenantA, m.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.roleID, reloaded.RoleID)
		})
	}
}

func TestListByRoleAfterDelete(t *testing.T) {
	ctx := context.Background()
	members, roles := setup(t)

	support := dashboardRole(t, roles, tenantA, "Support", false)

	for _, email := range []string{"b@acme.test", "a@acme.test"} {
		_, err := members.Create(ctx, tenantA, CreateInput{Email: email, RoleID: support.ID})
		require.NoError(t, err)
	}

	holders, err := members.ListByRole(ctx, tenantA, support.ID)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, "a@acme.test", holders[0].Email)

	require.NoError(t, roles.Delete(ctx, tenantA, support.ID))

	holders, err = members.ListByRole(ctx, tenantA, support.ID)
	require.NoError(t, err)
	assert.Empty(t, holders)
}
