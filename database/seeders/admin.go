package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/logger"
)

// Option keys read by SeedAdmin.
const (
	OptAdminEmail     = "admin-email"
	OptAdminPassword  = "admin-password"
	OptAdminMobile    = "admin-mobile"
	OptAdminFirstName = "admin-first-name"
	OptAdminLastName  = "admin-last-name"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin registers the admin account named by the options, or promotes
// it if the email is already registered. Nobody can become an admin over
// HTTP until one exists, so this is how the first one is made.
func SeedAdmin(ctx context.Context, env Env) error {
	email := env.Options[OptAdminEmail]
	if email == "" {
		return errors.New("admin email is required")
	}

	reg := services.Registration{
		FirstName: orDefault(env.Options[OptAdminFirstName], "Store"),
		LastName:  orDefault(env.Options[OptAdminLastName], "Admin"),
		Email:     email,
		MobileNo:  orDefault(env.Options[OptAdminMobile], "00000000000"),
		Password:  env.Options[OptAdminPassword],
	}

	u, err := env.Users.Register(ctx, reg)
	switch {
	case apperror.Is(err, apperror.Conflict):
		if u, err = env.Users.ByEmail(ctx, email); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("register %s: %w", email, err)
	}

	if u.IsAdmin {
		return nil
	}
	if _, err := env.Users.SetAdmin(ctx, u.ID.Hex(), true); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("admin seeded", "email", email)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
