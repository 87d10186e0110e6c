package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/handler/http/middleware"
	"github.com/piyushaneja30/licensing-portal/internal/service"
)

// NewRouter wires the HTTP surface. License and application handlers mount
// under the same protected groups and consume the principal from the request
// context; they never re-derive it from raw headers.
func NewRouter(auth *service.AuthService, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	authHandler := NewAuthHandler(auth, logger)
	meHandler := NewMeHandler(auth, logger)
	adminHandler := NewAdminHandler(auth, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/auth")
	{
		api.POST("/signup", authHandler.Signup)
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		protected := api.Group("/")
		protected.Use(middleware.Auth(auth, logger))
		{
			protected.GET("/me", meHandler.Me)
			protected.PUT("/profile", meHandler.UpdateProfile)
			protected.POST("/change-password", meHandler.ChangePassword)
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/logout-all", authHandler.LogoutAll)

			admin := protected.Group("/")
			admin.Use(middleware.RequireRole(models.RoleAdmin, logger))
			{
				admin.GET("/users/all", adminHandler.ListUsers)
			}
		}
	}

	return router
}
