package routes

import (
	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/ArowuTest/masterstudent-moderation/internal/handlers"
	"github.com/ArowuTest/masterstudent-moderation/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerDependencies holds the handlers wired by main
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	AdminHandler      *handlers.AdminHandler
	ModerationHandler *handlers.ModerationHandler
	SystemHandler     *handlers.SystemHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	public := router.Group("/api/v1")
	{
		public.GET("/health", deps.SystemHandler.Health)
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))
		public.POST("/auth/login", deps.AuthHandler.Login)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWT.Secret))
	{
		admin.GET("/stats", deps.AdminHandler.GetStats)
		admin.GET("/activity", deps.AdminHandler.GetActivity)
		admin.GET("/users", deps.AdminHandler.GetUsers)
		admin.GET("/users/:id/balance", deps.AdminHandler.GetUserBalance)
		admin.GET("/coins", deps.AdminHandler.GetCoinTransactions)
		admin.GET("/logs", deps.AdminHandler.GetLogs)

		notes := admin.Group("/notes")
		{
			notes.GET("", deps.AdminHandler.GetNotes)
			notes.POST("/:id/approve", deps.ModerationHandler.Approve)
			notes.POST("/:id/reject", deps.ModerationHandler.Reject)
		}

		admin.GET("/storage", deps.SystemHandler.GetStorage)
		admin.GET("/sync/pending", deps.SystemHandler.GetPendingSync)
	}

	return router
}
