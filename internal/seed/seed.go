// Package seed bootstraps the default admin account on startup.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/opsdesk/internal/auth/domain"
	"github.com/smallbiznis/opsdesk/internal/auth/password"
	"github.com/smallbiznis/opsdesk/internal/config"
	"gorm.io/gorm"
)

// Matches the minimum the auth service enforces on CreateUser.
const minSeedPasswordLength = 8

// EnsureAdminUser creates the configured admin account when no admin
// exists yet. Existing installs are left untouched.
func EnsureAdminUser(db *gorm.DB, node *snowflake.Node, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" {
		return nil
	}
	if len(strings.TrimSpace(cfg.SeedAdminPassword)) < minSeedPasswordLength {
		return errors.New("seed admin password must be at least 8 characters")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).
			Where("role = ?", authdomain.RoleAdmin).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(cfg.SeedAdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		admin := authdomain.User{
			ID:           node.Generate(),
			Name:         "Administrator",
			Email:        email,
			PasswordHash: &hash,
			Role:         authdomain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&admin).Error
	})
}
