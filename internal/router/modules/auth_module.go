package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ecommerce-auth/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-auth/internal/interface/middleware"
	"github.com/oksasatya/go-ecommerce-auth/pkg/helpers"
)

// AuthModule mounts the account lifecycle routes under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)
	emailLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	tokenLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/activate/resend", emailLimiter, m.Handler.ResendActivation)
	auth.GET("/activate", tokenLimiter, m.Handler.Activate)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	auth.POST("/password-reset", emailLimiter, m.Handler.RequestPasswordReset)
	auth.POST("/reset-password/:uid/:token", tokenLimiter, m.Handler.ConfirmPasswordReset)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(m.Redis, m.JWT))
	protected.Use(middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByUserAndPath(), nil))
	{
		protected.POST("/password/change", m.Handler.ChangePassword)
		protected.POST("/logout", m.Handler.Logout)
	}
}
