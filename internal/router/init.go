package router

import (
	userapp "github.com/haoyun/account-service/internal/application"
	"github.com/haoyun/account-service/internal/container"
	pginfra "github.com/haoyun/account-service/internal/infrastructure/postgres"
	handlers "github.com/haoyun/account-service/internal/interface/http"
	"github.com/haoyun/account-service/internal/router/modules"
)

// InitModules builds the feature modules from the container and registers
// them with the router registry. Called once during startup.
func InitModules(reg *Registry, c *container.Container) {
	repo := pginfra.NewUserRepository(c.PGPool)

	userSvc := userapp.NewService(
		repo,
		c.Redis,
		c.Cfg.CacheTTL,
		c.Logger,
		c.ES,
		c.Cfg.ESUsersIndex,
	)
	verifySvc := userapp.NewVerificationService(c.Mail, c.Logger, c.Cfg.MailSendEnabled)

	userHandler := handlers.NewUserHandler(userSvc, c.Logger, c.AuditPub)
	verifyHandler := handlers.NewVerificationHandler(verifySvc, c.Logger, c.AuditPub)

	reg.Add(modules.NewUserModule(userHandler))
	reg.Add(modules.NewVerificationModule(verifyHandler))
}
