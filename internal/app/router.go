package app

import (
	"medboard_backend/docs"
	"medboard_backend/internal/config"
	"medboard_backend/internal/middleware"
	"medboard_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/healthz", c.health.Liveness)
	router.GET("/api/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api/v1")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	registerStudentRoutes(authGroup, c)
}

func registerPublicRoutes(router *gin.Engine, c *controllers) {
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/signup", c.auth.Signup)
		auth.POST("/login", c.auth.Login)
		auth.POST("/sso/login", c.auth.SSOLogin)
	}
}

func registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)

	chat := group.Group("/chat")
	{
		chat.GET("/question", c.question.GetQuestion)
		chat.POST("/answer", c.question.SubmitAnswer)
		chat.POST("/question/:id/vote", c.question.Vote)
	}

	analytics := group.Group("/analytics")
	{
		analytics.GET("/summary", c.analytics.GetSummary)
		analytics.GET("/detailed", c.analytics.GetDetailed)
		analytics.GET("/system-stats", c.analytics.GetSystemStats)
	}
}
