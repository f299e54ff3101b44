package router

import (
	"github.com/oksasatya/go-ecommerce-auth/config"
	"github.com/oksasatya/go-ecommerce-auth/internal/application"
	"github.com/oksasatya/go-ecommerce-auth/internal/container"
	repo "github.com/oksasatya/go-ecommerce-auth/internal/domain/repository"
	esinfra "github.com/oksasatya/go-ecommerce-auth/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/go-ecommerce-auth/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ecommerce-auth/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-ecommerce-auth/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-auth/internal/router/modules"
	"github.com/oksasatya/go-ecommerce-auth/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ecommerce-auth/pkg/mailer/templates"
)

type AuthModuleDeps struct {
	Users       repo.UserRepository
	Sessions    *application.Service
	Auth        *application.AuthService
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

// buildAuthDeps wires repositories and services from the container. Without
// a Postgres pool the in-memory repositories are used.
func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var (
		users repo.UserRepository
		audit repo.AuditRepository
	)
	if pool := container.GetPGPool(); pool != nil {
		users = pginfra.NewUserRepository(pool)
		audit = pginfra.NewAuditRepository(pool)
	} else {
		logger.Warn("no postgres pool; using in-memory repositories")
		users = memory.NewUserRepository()
		audit = memory.NewAuditRepository()
	}

	var indexer application.UserIndexer
	if es := container.GetES(); es != nil {
		indexer = esinfra.NewUserIndex(es, cfg.ESUsersIndex)
	}

	sessions := application.NewService(users, container.GetJWT(), container.GetRedis(), logger, indexer)
	tokens := application.NewTokenService(users, cfg.SecretKey, cfg.ActivationTTL, cfg.ResetTokenTTL)
	auth := application.NewAuthService(users, tokens, sessions, container.GetNotifier(), logger, authOptions(cfg))

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	return AuthModuleDeps{
		Users:       users,
		Sessions:    sessions,
		Auth:        auth,
		AuthHandler: handlers.NewAuthHandler(auth, sessions, audit, logger, cookies),
		UserHandler: handlers.NewUserHandler(sessions, logger),
	}
}

func authOptions(cfg *config.Config) application.AuthOptions {
	return application.AuthOptions{
		Brand: mailtpl.Brand{
			AppName:        cfg.AppName,
			CompanyName:    cfg.CompanyName,
			CompanyAddress: cfg.CompanyAddress,
			LogoURL:        cfg.LogoURL,
			SupportURL:     cfg.SupportURL,
		},
		ActivationURL:        cfg.ActivationURL,
		ResetPasswordURL:     cfg.ResetPasswordURL,
		RequireActiveLogin:   cfg.RequireActiveLogin,
		UniformResetResponse: cfg.UniformResetResponse,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAuthDeps()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	r.Add(modules.NewAuthModule(deps.AuthHandler, jwt, rdb))
	r.Add(modules.NewUserModule(deps.UserHandler, jwt, rdb))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
