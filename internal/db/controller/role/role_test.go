package role

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/db/dbtest"
	"github.com/deskhub/deskhub/internal/db/models"
)

const (
	tenantA = "7d9c2a4e-3b0f-4f8e-9a51-1c2d3e4f5a6b"
	tenantB = "0f1e2d3c-4b5a-4968-8776-655443322110"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db := dbtest.Open(t)
	dbtest.Tenant(t, db, tenantA, "Acme")
	dbtest.Tenant(t, db, tenantB, "Globex")

	s, err := New(db)
	require.NoError(t, err)

	return s, db
}

func readOnly(r models.Resource) models.Permissions {
	return models.Permissions{{Resource: r, Actions: []models.Action{models.ActionRead}}}
}

func countRoles(t *testing.T, db *gorm.DB, tenantID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Role{}).Where("tenant_id = ?", tenantID).Count(&n).Error)

	return n
}

func countDefaults(t *testing.T, db *gorm.DB, tenantID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Role{}).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).Count(&n).Error)

	return n
}

func TestNewNilDB(t *testing.T) {
	s, err := New(nil)
	require.ErrorIs(t, err, ErrDBNil)
	assert.Nil(t, s)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		tenantID      string
		in            CreateInput
		expectedError error
		expectedPerms models.Permissions
	}{
		{
			name:          "empty tenant",
			tenantID:      "",
			in:            CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)},
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "empty name",
			tenantID:      tenantA,
			in:            CreateInput{Name: "   ", Permissions: readOnly(models.ResourceContacts)},
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "no permissions",
			tenantID:      tenantA,
			in:            CreateInput{Name: "Support"},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "only empty action sets",
			tenantID: tenantA,
			in: CreateInput{Name: "Support", Permissions: models.Permissions{
				{Resource: models.ResourceContacts, Actions: nil},
			}},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "unknown resource",
			tenantID: tenantA,
			in: CreateInput{Name: "Support", Permissions: models.Permissions{
				{Resource: "billing", Actions: []models.Action{models.ActionRead}},
			}},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "unknown resource without actions",
			tenantID: tenantA,
			in: CreateInput{Name: "Support", Permissions: models.Permissions{
				{Resource: models.ResourceContacts, Actions: []models.Action{models.ActionRead}},
				{Resource: "billing", Actions: []models.Action{}},
			}},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "unknown action",
			tenantID: tenantA,
			in: CreateInput{Name: "Support", Permissions: models.Permissions{
				{Resource: models.ResourceContacts, Actions: []models.Action{"export"}},
			}},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "duplicate resource",
			tenantID: tenantA,
			in: CreateInput{Name: "Support", Permissions: models.Permissions{
				{Resource: models.ResourceContacts, Actions: []models.Action{models.ActionRead}},
				{Resource: models.ResourceContacts, Actions: []models.Action{models.ActionWrite}},
			}},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "description too long",
			tenantID: tenantA,
			in: CreateInput{
				Name:        "Support",
				Description: strings.Repeat("x", 256),
				Permissions: readOnly(models.ResourceContacts),
			},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "successful create normalises permissions",
			tenantID: tenantA,
			in: CreateInput{Name: "  Support  ", Permissions: models.Permissions{
				{Resource: models.ResourceTemplates, Actions: []models.Action{models.ActionWrite, models.ActionRead, models.ActionRead}},
				{Resource: models.ResourceContacts, Actions: []models.Action{models.ActionRead}},
				{Resource: models.ResourceAnalytics},
			}},
			expectedPerms: models.Permissions{
				{Resource: models.ResourceContacts, Actions: []models.Action{models.ActionRead}},
				{Resource: models.ResourceTemplates, Actions: []models.Action{models.ActionRead, models.ActionWrite}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, db := setupStore(t)

			role, err := s.Create(ctx, tc.tenantID, tc.in)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, role)
				assert.Zero(t, countRoles(t, db, tenantA), "nothing may be persisted")

				return
			}

			require.NoError(t, err)
			require.NotNil(t, role)
			assert.Len(t, role.ID, 26)
			assert.Equal(t, "Support", role.Name)
			assert.Equal(t, tc.expectedPerms, role.Permissions)
			assert.False(t, role.CreatedAt.IsZero())

			stored, err := s.Get(ctx, tc.tenantID, role.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPerms, stored.Permissions)
		})
	}
}

func TestNameConflictFromUniqueIndex(t *testing.T) {
	s, db := setupStore(t)

	r, err := s.Create(context.Background(), tenantA, CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)})
	require.NoError(t, err)

	// bypass nameTaken the way a case-insensitive collation would
	dup := models.Role{ID: "dup", TenantID: tenantA, Name: r.Name, Permissions: readOnly(models.ResourceContacts)}
	err = nameConflict(db.Create(&dup).Error, dup.Name, "create role")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "Support")

	err = nameConflict(errors.New("disk full"), "Support", "create role")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrValidation)

	assert.NoError(t, nameConflict(nil, "Support", "create role"))
}

func TestCreateNameCollision(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	_, err := s.Create(ctx, tenantA, CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)})
	require.NoError(t, err)

	_, err = s.Create(ctx, tenantA, CreateInput{Name: " Support", Permissions: readOnly(models.ResourceDashboard)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	// names are scoped per tenant
	_, err = s.Create(ctx, tenantB, CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)})
	require.NoError(t, err)
}

func TestDefaultRoleUniqueness(t *testing.T) {
	ctx := context.Background()
	s, db := setupStore(t)

	agent, err := s.Create(ctx, tenantA, CreateInput{
		Name: "Agent", Permissions: readOnly(models.ResourceDashboard), IsDefault: true,
	})
	require.NoError(t, err)

	other, err := s.Create(ctx, tenantB, CreateInput{
		Name: "Agent", Permissions: readOnly(models.ResourceDashboard), IsDefault: true,
	})
	require.NoError(t, err)

	second, err := s.Create(ctx, tenantA, CreateInput{
		Name: "Viewer", Permissions: readOnly(models.ResourceAnalytics), IsDefault: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countDefaults(t, db, tenantA))

	def, err := s.Default(ctx, tenantA)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	reloaded, err := s.Get(ctx, tenantA, agent.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)

	// other tenants keep their default
	def, err = s.Default(ctx, tenantB)
	require.NoError(t, err)
	assert.Equal(t, other.ID, def.ID)

	// moving the flag back through update
	yes := true
	_, err = s.Update(ctx, tenantA, agent.ID, UpdateInput{IsDefault: &yes})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countDefaults(t, db, tenantA))

	def, err = s.Default(ctx, tenantA)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, def.ID)
}

func TestDefaultRoleConcurrentPromotion(t *testing.T) {
	ctx := context.Background()
	s, db := setupStore(t)

	ids := make([]string, 0, 8)

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		r, err := s.Create(ctx, tenantA, CreateInput{Name: name, Permissions: readOnly(models.ResourceDashboard)})
		require.NoError(t, err)

		ids = append(ids, r.ID)
	}

	var wg sync.WaitGroup

	yes := true

	for _, id := range ids {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			_, err := s.Update(ctx, tenantA, id, UpdateInput{IsDefault: &yes})
			assert.NoError(t, err)
		}(id)
	}

	wg.Wait()

	assert.Equal(t, int64(1), countDefaults(t, db, tenantA))
}

func TestDefaultNotFound(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.Default(context.Background(), tenantA)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	empty := models.Permissions{}
	newName := "Senior Support"
	blank := " "
	taken := "Sales"

	testCases := []struct {
		name          string
		id            func(support string) string
		tenantID      string
		in            UpdateInput
		expectedError error
		check         func(t *testing.T, r *models.Role)
	}{
		{
			name:          "unknown role",
			id:            func(string) string { return "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV" },
			tenantID:      tenantA,
			in:            UpdateInput{Name: &newName},
			expectedError: apperr.ErrNotFound,
		},
		{
			name:          "role of another tenant",
			id:            func(support string) string { return support },
			tenantID:      tenantB,
			in:            UpdateInput{Name: &newName},
			expectedError: apperr.ErrNotFound,
		},
		{
			name:          "empty permission set",
			id:            func(support string) string { return support },
			tenantID:      tenantA,
			in:            UpdateInput{Permissions: &empty},
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "blank name",
			id:            func(support string) string { return support },
			tenantID:      tenantA,
			in:            UpdateInput{Name: &blank},
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "name collision",
			id:            func(support string) string { return support },
			tenantID:      tenantA,
			in:            UpdateInput{Name: &taken},
			expectedError: apperr.ErrValidation,
		},
		{
			name:     "rename keeps permissions",
			id:       func(support string) string { return support },
			tenantID: tenantA,
			in:       UpdateInput{Name: &newName},
			check: func(t *testing.T, r *models.Role) {
				t.Helper()
				assert.Equal(t, newName, r.Name)
				assert.Equal(t, readOnly(models.ResourceContacts), r.Permissions)
				assert.True(t, r.UpdatedAt.After(r.CreatedAt) || r.UpdatedAt.Equal(r.CreatedAt))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := setupStore(t)

			support, err := s.Create(ctx, tenantA, CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)})
			require.NoError(t, err)

			_, err = s.Create(ctx, tenantA, CreateInput{Name: "Sales", Permissions: readOnly(models.ResourceContacts)})
			require.NoError(t, err)

			role, err := s.Update(ctx, tc.tenantID, tc.id(support.ID), tc.in)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, role)

				unchanged, err := s.Get(ctx, tenantA, support.ID)
				require.NoError(t, err)
				assert.Equal(t, "Support", unchanged.Name)
				assert.Equal(t, readOnly(models.ResourceContacts), unchanged.Permissions)

				return
			}

			require.NoError(t, err)
			tc.check(t, role)
		})
	}
}

func TestRevokingLastActionRemovesEntry(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	perms := models.Permissions{
		{Resource: models.ResourceContacts, Actions: []models.Action{models.ActionRead, models.ActionWrite}},
		{Resource: models.ResourceDashboard, Actions: []models.Action{models.ActionRead}},
	}

	role, err := s.Create(ctx, tenantA, CreateInput{Name: "Support", Permissions: perms})
	require.NoError(t, err)

	edited := role.Permissions.Revoke(models.ResourceContacts, models.ActionRead, models.ActionWrite)

	role, err = s.Update(ctx, tenantA, role.ID, UpdateInput{Permissions: &edited})
	require.NoError(t, err)

	_, ok := role.Permissions.Lookup(models.ResourceContacts)
	assert.False(t, ok)

	// an explicitly empty entry is dropped as well
	withEmpty := models.Permissions{
		{Resource: models.ResourceDashboard, Actions: []models.Action{models.ActionRead}},
		{Resource: models.ResourceAnalytics, Actions: []models.Action{}},
	}

	role, err = s.Update(ctx, tenantA, role.ID, UpdateInput{Permissions: &withEmpty})
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 1)

	stored, err := s.Get(ctx, tenantA, role.ID)
	require.NoError(t, err)
	assert.Equal(t, readOnly(models.ResourceDashboard), stored.Permissions)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, db := setupStore(t)

	role, err := s.Create(ctx, tenantA, CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)})
	require.NoError(t, err)

	member := dbtest.Member(t, db, models.Member{
		ID: "5b4a3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d", TenantID: tenantA, Email: "agent@acme.test",
		Role: models.RoleTagAgent, RoleID: role.ID, Active: true,
	})

	require.ErrorIs(t, s.Delete(ctx, tenantB, role.ID), apperr.ErrNotFound)
	require.NoError(t, s.Delete(ctx, tenantA, role.ID))
	require.ErrorIs(t, s.Delete(ctx, tenantA, role.ID), apperr.ErrNotFound)

	_, err = s.Get(ctx, tenantA, role.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	var reloaded models.Member
	require.NoError(t, db.First(&reloaded, "id = ?", member.ID).Error)
	assert.Empty(t, reloaded.RoleID)
}

func TestDeleteIgnoresCallerCancellation(t *testing.T) {
	s, _ := setupStore(t)

	role, err := s.Create(context.Background(), tenantA, CreateInput{Name: "Support", Permissions: readOnly(models.ResourceContacts)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Delete(ctx, tenantA, role.ID))

	_, err = s.Get(context.Background(), tenantA, role.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	for _, name := range []string{"Sales", "Agent", "Manager"} {
		_, err := s.Create(ctx, tenantA, CreateInput{Name: name, Permissions: readOnly(models.ResourceDashboard)})
		require.NoError(t, err)
	}

	_, err := s.Create(ctx, tenantB, CreateInput{Name: "Other", Permissions: readOnly(models.ResourceDashboard)})
	require.NoError(t, err)

	roles, err := s.List(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "Agent", roles[0].Name)
	assert.Equal(t, "Manager", roles[1].Name)
	assert.Equal(t, "Sales", roles[2].Name)

	_, err = s.List(ctx, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
