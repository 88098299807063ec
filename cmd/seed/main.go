package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/qms-core/config"
	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/repository"
	pginfra "github.com/oksasatya/qms-core/internal/infrastructure/postgres"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

const demoPassword = "password123"

// seeds the role catalogue and one demo actor per role (<role>@qms.local)
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	roles := pginfra.NewRoleRepository(pool)
	actors := pginfra.NewActorRepository(pool)

	if err := roles.EnsureRoles(ctx, entity.AllRoles()); err != nil {
		logger.WithError(err).Fatal("failed to upsert roles")
	}
	logger.WithField("roles", entity.AllRoles()).Info("roles ensured")

	hash, err := helpers.HashPassword(demoPassword)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	for _, role := range entity.AllRoles() {
		email := string(role) + "@qms.local"
		a, err := actors.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			a = &entity.Actor{Email: email, Password: hash, Name: "Demo " + string(role)}
			if err := actors.Create(ctx, a); err != nil {
				logger.WithError(err).WithField("email", email).Fatal("failed to seed actor")
			}
		case err != nil:
			logger.WithError(err).WithField("email", email).Fatal("failed to look up actor")
		}

		if err := roles.AssignRole(ctx, a.ID, role); err != nil {
			logger.WithError(err).WithField("email", email).Fatal("failed to assign role")
		}
		logger.WithFields(logrus.Fields{"id": a.ID, "email": email, "role": role}).Info("seeded actor")
	}
	logger.WithField("password", demoPassword).Info("demo actors ready")
}
