// Package role provides the tenant scoped role store.
//
// Every write validates the resulting role, keeps at most one default role per
// tenant and runs in a single transaction. Writes for the same tenant are
// serialised, so the default flag moves atomically from one role to another.
package role

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/idx"
)

const (
	tenantQueryPattern      = "tenant_id = ?"
	tenantAndIDQueryPattern = "tenant_id = ? AND id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrTenantEmpty is returned when an operation is called without a tenant.
	ErrTenantEmpty = apperr.Validation("tenant id must not be empty")
)

// CreateInput holds the fields of a new role.
type CreateInput struct {
	Name        string
	Description string
	Permissions models.Permissions
	IsDefault   bool
}

// UpdateInput holds the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Permissions *models.Permissions
	IsDefault   *bool
}

// Repository is the role store contract shared by Store and Cache.
type Repository interface {
	Create(ctx context.Context, tenantID string, in CreateInput) (*models.Role, error)
	Update(ctx context.Context, tenantID, id string, in UpdateInput) (*models.Role, error)
	Delete(ctx context.Context, tenantID, id string) error
	Get(ctx context.Context, tenantID, id string) (*models.Role, error)
	List(ctx context.Context, tenantID string) ([]models.Role, error)
	Default(ctx context.Context, tenantID string) (*models.Role, error)
}

// Store persists roles with gorm.
type Store struct {
	db       *gorm.DB
	validate *validator.Validate
	locks    sync.Map // tenant id -> *sync.Mutex
}

// New returns a Store backed by db.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Store{
		db:       db,
		validate: newValidator(),
	}, nil
}

// lock serialises writes for one tenant inside this process.
func (s *Store) lock(tenantID string) func() {
	m, _ := s.locks.LoadOrStore(tenantID, &sync.Mutex{})
	mu := m.(*sync.Mutex) //nolint:forcetypeassert

	mu.Lock()

	return mu.Unlock
}

// lockTenantRow takes a row lock on the tenant so concurrent writers on other
// replicas queue up as well. SQLite serialises writers on its own.
func lockTenantRow(tx *gorm.DB, tenantID string) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}

	var tenant models.Tenant

	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", tenantID).
		Limit(1).
		Find(&tenant).Error
}

// write runs fn in a transaction holding the tenant locks.
// The caller's cancellation is dropped: a started write always completes or rolls back.
func (s *Store) write(ctx context.Context, tenantID string, fn func(tx *gorm.DB) error) error {
	unlock := s.lock(tenantID)
	defer unlock()

	return s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := lockTenantRow(tx, tenantID); err != nil {
			return errors.Wrap(err, "lock tenant")
		}

		return fn(tx)
	})
}

func (s *Store) nameTaken(tx *gorm.DB, tenantID, name, exceptID string) (bool, error) {
	var count int64

	err := tx.Model(&models.Role{}).
		Where("tenant_id = ? AND name = ? AND id <> ?", tenantID, name, exceptID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check role name")
	}

	return count > 0, nil
}

// nameConflict turns a unique index violation into a validation error. It catches
// names that nameTaken misses under case-insensitive collations.
func nameConflict(err error, name, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation("a role named %q already exists", name)
	}

	return errors.Wrap(err, msg)
}

// demoteOthers clears the default flag on every other role of the tenant.
func demoteOthers(tx *gorm.DB, tenantID, keepID string) (int64, error) {
	res := tx.Model(&models.Role{}).
		Where("tenant_id = ? AND is_default = ? AND id <> ?", tenantID, true, keepID).
		Update("is_default", false)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "demote default role")
	}

	return res.RowsAffected, nil
}

// Create validates and stores a new role.
// When the role is the new default, the previous default is demoted in the same transaction.
func (s *Store) Create(ctx context.Context, tenantID string, in CreateInput) (*models.Role, error) {
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	st := roleState{
		Name:        in.Name,
		Description: in.Description,
		Permissions: in.Permissions.Clone(),
	}
	if err := s.check(&st); err != nil {
		return nil, err
	}

	role := &models.Role{
		ID:          idx.NewULID(),
		TenantID:    tenantID,
		Name:        st.Name,
		Description: st.Description,
		Permissions: st.Permissions,
		IsDefault:   in.IsDefault,
	}

	err := s.write(ctx, tenantID, func(tx *gorm.DB) error {
		taken, err := s.nameTaken(tx, tenantID, role.Name, role.ID)
		if err != nil {
			return err
		}

		if taken {
			return apperr.Validation("a role named %q already exists", role.Name)
		}

		if role.IsDefault {
			demoted, err := demoteOthers(tx, tenantID, role.ID)
			if err != nil {
				return err
			}

			if demoted > 0 {
				log.Info().Str("tenant", tenantID).Str("role", role.ID).Msg("default role replaced")
			}
		}

		return nameConflict(tx.Create(role).Error, role.Name, "create role")
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("tenant", tenantID).Str("role", role.ID).Str("name", role.Name).Msg("role created")

	return role, nil
}

// Update applies the non-nil fields of in and validates the merged role.
func (s *Store) Update(ctx context.Context, tenantID, id string, in UpdateInput) (*models.Role, error) {
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	var role models.Role

	err := s.write(ctx, tenantID, func(tx *gorm.DB) error {
		if err := first(tx, tenantID, id, &role); err != nil {
			return err
		}

		st := roleState{
			Name:        role.Name,
			Description: role.Description,
			Permissions: role.Permissions,
		}

		if in.Name != nil {
			st.Name = *in.Name
		}

		if in.Description != nil {
			st.Description = *in.Description
		}

		if in.Permissions != nil {
			st.Permissions = in.Permissions.Clone()
		}

		if err := s.check(&st); err != nil {
			return err
		}

		if st.Name != role.Name {
			taken, err := s.nameTaken(tx, tenantID, st.Name, role.ID)
			if err != nil {
				return err
			}

			if taken {
				return apperr.Validation("a role named %q already exists", st.Name)
			}
		}

		role.Name = st.Name
		role.Description = st.Description
		role.Permissions = st.Permissions

		if in.IsDefault != nil {
			role.IsDefault = *in.IsDefault
		}

		if role.IsDefault {
			if _, err := demoteOthers(tx, tenantID, role.ID); err != nil {
				return err
			}
		}

		return nameConflict(tx.Save(&role).Error, role.Name, "update role")
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("tenant", tenantID).Str("role", role.ID).Msg("role updated")

	return &role, nil
}

// Delete removes a role. Members holding it lose it in the same transaction.
func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return ErrTenantEmpty
	}

	var released int64

	err := s.write(ctx, tenantID, func(tx *gorm.DB) error {
		res := tx.Where(tenantAndIDQueryPattern, tenantID, id).Delete(&models.Role{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete role")
		}

		if res.RowsAffected == 0 {
			return apperr.NotFound("role %s not found", id)
		}

		res = tx.Model(&models.Member{}).
			Where("tenant_id = ? AND role_id = ?", tenantID, id).
			Update("role_id", "")
		if res.Error != nil {
			return errors.Wrap(res.Error, "release role from members")
		}

		released = res.RowsAffected

		return nil
	})
	if err != nil {
		return err
	}

	if released > 0 {
		log.Warn().Str("tenant", tenantID).Str("role", id).Int64("members", released).
			Msg("deleted role was still assigned, members are left without a role")
	}

	log.Info().Str("tenant", tenantID).Str("role", id).Msg("role deleted")

	return nil
}

// Get returns a single role of the tenant.
func (s *Store) Get(ctx context.Context, tenantID, id string) (*models.Role, error) {
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	var role models.Role
	if err := first(s.db.WithContext(ctx), tenantID, id, &role); err != nil {
		return nil, err
	}

	return &role, nil
}

// List returns all roles of the tenant ordered by name.
func (s *Store) List(ctx context.Context, tenantID string) ([]models.Role, error) {
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	var roles []models.Role

	err := s.db.WithContext(ctx).
		Where(tenantQueryPattern, tenantID).
		Order("name").
		Find(&roles).Error
	if err != nil {
		return nil, errors.Wrap(err, "list roles")
	}

	return roles, nil
}

// Default returns the default role of the tenant.
func (s *Store) Default(ctx context.Context, tenantID string) (*models.Role, error) {
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	var role models.Role

	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %s has no default role", tenantID)
		}

		return nil, errors.Wrap(err, "load default role")
	}

	return &role, nil
}

func first(tx *gorm.DB, tenantID, id string, role *models.Role) error {
	err := tx.Where(tenantAndIDQueryPattern, tenantID, id).First(role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("role %s not found", id)
		}

		return errors.Wrap(err, "load role")
	}

	return nil
}
