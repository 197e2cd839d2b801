package bootstrap

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/config"
	"github.com/spec-kit/passport-portal/internal/domain"
	"github.com/spec-kit/passport-portal/internal/repository"
)

const defaultAdminPassword = "admin123"

// EnsureAdmin seeds the configured admin account on first run if no user
// with that email exists.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, cfg config.BootstrapConfig, bcryptCost int, logger *zap.Logger) error {
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, bcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("created bootstrap admin account", zap.String("email", cfg.AdminEmail))
	if cfg.AdminPassword == defaultAdminPassword {
		logger.Warn("bootstrap admin is using the default password; change it before any real deployment")
	}
	return nil
}
