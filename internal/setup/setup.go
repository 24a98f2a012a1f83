package setup

import (
	"github.com/accountd-dev/accountd/internal/config"
	"github.com/accountd-dev/accountd/internal/email"
	"github.com/accountd-dev/accountd/internal/handler"
	"github.com/accountd-dev/accountd/internal/jwt"
	"github.com/accountd-dev/accountd/internal/middleware"
	"github.com/accountd-dev/accountd/internal/middleware/metrics"
	"github.com/accountd-dev/accountd/internal/service"
	"github.com/accountd-dev/accountd/internal/storage/pg"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Jwt            jwt.TokenService
	Metrics        *metrics.Metrics
}

// SetupDependencies wires storage, mailer, token service, the account
// service and the HTTP layer together.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	mailer := email.New(&cfg.Private.Email)
	tokenService := jwt.New(cfg.JwtKey())

	accounts := service.NewAccounts(storage, mailer, tokenService)

	h := handler.New(accounts, cfg)
	authMw := middleware.NewAuth(tokenService, storage)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: authMw,
		Jwt:            tokenService,
		Metrics:        metrics.New(),
	}, nil
}
