package router

import (
	"github.com/gin-gonic/gin"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/internal/app/controller"
	"github.com/municipio/patentes-backend/internal/middleware"
	"github.com/municipio/patentes-backend/internal/websocket"
)

type Router struct {
	authController  *controller.AuthController
	excelController *controller.ExcelController
	memoController  *controller.MemoController
	hub             *websocket.Hub
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	excelController *controller.ExcelController,
	memoController *controller.MemoController,
	hub *websocket.Hub,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:  authController,
		excelController: excelController,
		memoController:  memoController,
		hub:             hub,
		authMiddleware:  authMiddleware,
		config:          cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Patentes API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
		}

		excel := v1.Group("/excel")
		excel.Use(r.authMiddleware.Authenticate())
		{
			excel.POST("", r.excelController.Import)
			excel.GET("", r.excelController.Export)
		}

		memos := v1.Group("/memos")
		{
			memos.GET("/:licenseNumber", r.memoController.FindByLicenseNumber)
			memos.POST("", r.authMiddleware.Authenticate(), r.memoController.Create)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/overview", r.memoController.Overview)
		}
	}

	// Progress updates during imports. The token travels in the query string
	// because browsers cannot set headers on WebSocket upgrades.
	router.GET("/ws/imports", r.authMiddleware.Authenticate(), r.hub.ServeWS)

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
