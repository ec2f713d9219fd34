package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alwiirfani/chemicals-sub000/config"
	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
)

// BootstrapFirstAdmin creates the initial ADMIN account when the database has
// none, so a fresh deployment is reachable without manual SQL.
func BootstrapFirstAdmin(ctx context.Context, cfg config.Config, repo *db.Repo, log *slog.Logger) {
	if cfg.Bootstrap.AdminEmail == "" || cfg.Bootstrap.AdminPassword == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Error("bootstrap: count admins", "err", err)
		return
	}
	if n > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Bootstrap.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("bootstrap: hash password", "err", err)
		return
	}
	email := strings.ToLower(cfg.Bootstrap.AdminEmail)
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Error("bootstrap: create admin", "err", err)
		return
	}
	log.Info("bootstrap: created first admin", "email", email)
}
