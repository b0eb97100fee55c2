package container

import (
	"log/slog"

	"github.com/FACorreiaa/go-user-management/config"
	"github.com/FACorreiaa/go-user-management/internal/api/user"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	UserRepo    *user.InMemoryUserRepo
	UserHandler *user.HandlerImpl
}

// NewContainer initializes and returns a new dependency container.
// The user store is constructed here and injected; it is not a package-level
// singleton, so tests and restarts start from an empty collection.
func NewContainer(cfg *config.Config, logger *slog.Logger) *Container {
	userRepo := user.NewInMemoryUserRepo(logger)
	userService := user.NewUserService(userRepo, cfg, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		UserRepo:    userRepo,
		UserHandler: userHandler,
	}
}
