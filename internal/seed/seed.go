package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/studyhub/internal/app/models"
	appRepos "github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/validation"
)

// AdminAccount describes the administrator created at startup
type AdminAccount struct {
	Username string
	Password string
	Name     string
}

// EnsureAdmin creates the configured administrator if no user has its
// username yet, and promotes an existing account with that username.
// An empty username disables seeding.
func EnsureAdmin(ctx context.Context, users appRepos.IUserRepository, account AdminAccount, lgr zerolog.Logger) error {
	if account.Username == "" {
		lgr.Debug().Msg("No admin account configured, skipping seed")
		return nil
	}

	existing, err := users.GetByUsername(ctx, account.Username)
	if err != nil {
		return fmt.Errorf("error checking admin user: %w", err)
	}
	if existing != nil {
		if existing.IsAdmin() {
			lgr.Info().Str("username", account.Username).Msg("Admin user already exists, skipping creation")
			return nil
		}
		existing.Role = appModels.RoleAdmin
		if err := users.Update(ctx, existing); err != nil {
			return fmt.Errorf("error promoting admin user: %w", err)
		}
		lgr.Info().Str("username", account.Username).Msg("Existing user promoted to admin")
		return nil
	}

	name := account.Name
	if name == "" {
		name = account.Username
	}

	var finalErr error
	for _, rule := range []*validation.StringValidation{
		validation.NewStringValidation("username", account.Username).WithMaxLength(validation.UsernameMaxLength),
		validation.NewStringValidation("name", name).WithMaxLength(validation.NameMaxLength),
		validation.NewStringValidation("password", account.Password).WithMinLength(validation.PasswordMinLength),
	} {
		finalErr = errors.Join(finalErr, rule.Err())
	}
	if finalErr != nil {
		return fmt.Errorf("invalid admin account: %w", finalErr)
	}

	hashed, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	admin := &appModels.User{
		Username: account.Username,
		Password: hashed,
		Name:     name,
		Role:     appModels.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrNameAlreadyExists) {
			return fmt.Errorf("admin display name %q is taken: %w", name, err)
		}
		return fmt.Errorf("error creating admin user: %w", err)
	}

	lgr.Info().Str("adminID", admin.ID).Str("username", admin.Username).Msg("Default admin user created successfully")
	return nil
}
