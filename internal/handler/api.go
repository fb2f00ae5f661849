package handler

import (
	"github.com/bibliaplan/internal/auth"
	"github.com/bibliaplan/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	users        *service.UserService
	progress     *service.ProgressService
	achievements *service.AchievementService
	limiter      *auth.LoginLimiter
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, limiter *auth.LoginLimiter) *API {
	if limiter == nil {
		limiter = auth.NewLoginLimiter()
	}

	return &API{
		db:           db,
		users:        service.NewUserService(db),
		progress:     service.NewProgressService(db),
		achievements: service.NewAchievementService(db),
		limiter:      limiter,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Limiter exposes the login limiter so main can start its sweeper.
func (a *API) Limiter() *auth.LoginLimiter {
	return a.limiter
}
