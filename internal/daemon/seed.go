package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub/internal/config"
	"github.com/deskhub/deskhub/internal/db/controller/role"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/idx"
)

const (
	defaultSeedTenant = "Demo Company"
	defaultSeedOwner  = "owner@deskhub.local"
)

// agentPermissions is what new members of the demo tenant get through the default role.
func agentPermissions() models.Permissions {
	return models.Permissions{}.
		Grant(models.ResourceDashboard, models.ActionRead).
		Grant(models.ResourceConversations, models.ActionRead, models.ActionWrite).
		Grant(models.ResourceContacts, models.ActionRead)
}

// seed creates a demo tenant with its owner and a default role if there is no tenant yet.
func seed(cfg *config.Config, db *gorm.DB, roles role.Repository) error {
	var count int64
	if err := db.Model(&models.Tenant{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count tenants")
	}

	if count > 0 {
		return nil
	}

	name := cfg.Seed.TenantName
	if name == "" {
		name = defaultSeedTenant
	}

	email := cfg.Seed.OwnerEmail
	if email == "" {
		email = defaultSeedOwner
	}

	tenant := &models.Tenant{ID: idx.NewUUID(), Name: name}
	owner := &models.Member{
		ID:       idx.NewUUID(),
		TenantID: tenant.ID,
		Email:    email,
		Name:     "Owner",
		Role:     models.RoleTagOwner,
		IsOwner:  true,
		Active:   true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return errors.Wrap(err, "create tenant")
		}

		return errors.Wrap(tx.Create(owner).Error, "create owner")
	})
	if err != nil {
		return err
	}

	agent, err := roles.Create(context.Background(), tenant.ID, role.CreateInput{
		Name:        "Agent",
		Description: "Default role of new members",
		Permissions: agentPermissions(),
		IsDefault:   true,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("tenant", tenant.ID).
		Str("owner", owner.ID).
		Str("email", owner.Email).
		Str("default_role", agent.ID).
		Msg("seeded demo tenant")

	return nil
}
