// Package member provides access to the members of a tenant and their role assignment.
package member

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/db/controller/role"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/idx"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRolesNil is returned when no role repository was given.
	ErrRolesNil = errors.New("role repository is nil")
)

// CreateInput holds the fields of a new member.
type CreateInput struct {
	Email   string         `validate:"required,email,max=255"`
	Name    string         `validate:"max=200"`
	Role    models.RoleTag `validate:"omitempty,oneof=owner admin agent"`
	RoleID  string
	IsOwner bool
}

// Store reads and writes members.
type Store struct {
	db       *gorm.DB
	roles    role.Repository
	validate *validator.Validate
}

// New returns a member store. Roles are used to verify and default role assignments.
func New(db *gorm.DB, roles role.Repository) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if roles == nil {
		return nil, ErrRolesNil
	}

	return &Store{db: db, roles: roles, validate: validator.New()}, nil
}

// Get returns a member of the tenant.
func (s *Store) Get(ctx context.Context, tenantID, id string) (*models.Member, error) {
	var m models.Member

	err := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member %s not found", id)
		}

		return nil, errors.Wrap(err, "load member")
	}

	return &m, nil
}

// Create adds a member. Without an explicit role the tenant's default role is assigned, if there is one.
func (s *Store) Create(ctx context.Context, tenantID string, in CreateInput) (*models.Member, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	if in.Role == "" {
		in.Role = models.RoleTagAgent
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validation("invalid member: %v", err)
	}

	m := &models.Member{
		ID:       idx.NewUUID(),
		TenantID: tenantID,
		Email:    in.Email,
		Name:     in.Name,
		Role:     in.Role,
		IsOwner:  in.IsOwner,
		Active:   true,
	}

	switch {
	case in.RoleID != "":
		if _, err := s.roles.Get(ctx, tenantID, in.RoleID); err != nil {
			return nil, err
		}

		m.RoleID = in.RoleID
	default:
		def, err := s.roles.Default(ctx, tenantID)

		switch {
		case err == nil:
			m.RoleID = def.ID
		case errors.Is(err, apperr.ErrNotFound):
			log.Warn().Str("tenant", tenantID).Msg("no default role, member is created without a role")
		default:
			return nil, err
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Member{}).
		Where("tenant_id = ? AND email = ?", tenantID, m.Email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check member email")
	}

	if count > 0 {
		return nil, apperr.Validation("a member with email %q already exists", m.Email)
	}

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, errors.Wrap(err, "create member")
	}

	return m, nil
}

// AssignRole sets the custom role of a member. An empty roleID removes the assignment.
func (s *Store) AssignRole(ctx context.Context, tenantID, memberID, roleID string) (*models.Member, error) {
	m, err := s.Get(ctx, tenantID, memberID)
	if err != nil {
		return nil, err
	}

	if roleID != "" {
		if _, err = s.roles.Get(ctx, tenantID, roleID); err != nil {
			return nil, err
		}
	}

	res := s.db.WithContext(ctx).Model(&models.Member{}).
		Where("tenant_id = ? AND id = ?", tenantID, memberID).
		Update("role_id", roleID)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "assign role")
	}

	m.RoleID = roleID

	log.Info().Str("tenant", tenantID).Str("member", memberID).Str("role", roleID).Msg("role assigned")

	return m, nil
}

// ListByRole returns the members of the tenant holding roleID.
func (s *Store) ListByRole(ctx context.Context, tenantID, roleID string) ([]models.Member, error) {
	var members []models.Member

	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND role_id = ?", tenantID, roleID).
		Order("email").
		Find(&members).Error
	if err != nil {
		return nil, errors.Wrap(err, "list members")
	}

	return members, nil
}
