package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/restaurant-ops-backend/config"
	"github.com/ikkim/restaurant-ops-backend/internal/app/controller"
	"github.com/ikkim/restaurant-ops-backend/internal/middleware"
	"github.com/ikkim/restaurant-ops-backend/pkg/storeapi"
	"github.com/ikkim/restaurant-ops-backend/pkg/util"
)

type Router struct {
	wizardController       *controller.WizardController
	wizardSocketController *controller.WizardSocketController
	storeController        *controller.StoreController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	wizardController *controller.WizardController,
	wizardSocketController *controller.WizardSocketController,
	storeController *controller.StoreController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		wizardController:       wizardController,
		wizardSocketController: wizardSocketController,
		storeController:        storeController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
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
			"message": "Restaurant ops API is running",
		})
	})

	merchantOnly := []gin.HandlerFunc{
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole(util.RoleMerchant, util.RoleAdmin),
	}

	v1 := router.Group("/api/v1")
	{
		stores := v1.Group("/stores", merchantOnly...)
		{
			stores.POST("", r.storeController.RegisterStore)
			stores.GET("", r.storeController.ListStores)
			stores.GET("/:storeId", r.storeController.GetStore)
		}

		wizards := v1.Group("/wizards", merchantOnly...)
		{
			wizards.POST("", r.wizardController.OpenWizard)
			wizards.GET("/:id", r.wizardController.GetWizard)
			wizards.DELETE("/:id", r.wizardController.CloseWizard)

			wizards.PATCH("/:id/sections/:section", r.wizardController.UpdateSection)
			wizards.POST("/:id/steps/:index", r.wizardController.GoToStep)
			wizards.POST("/:id/validate/:index", r.wizardController.ValidateStep)
			wizards.POST("/:id/advance", r.wizardController.Advance)
			wizards.POST("/:id/retreat", r.wizardController.Retreat)

			wizards.POST("/:id/google/credentials", r.wizardController.UploadGoogleCredentials)
			wizards.POST("/:id/google/test", r.wizardController.TestGoogleConnection)
			wizards.POST("/:id/line/webhook", r.wizardController.RegenerateWebhook)
			wizards.POST("/:id/line/test", r.wizardController.TestLineConnection)
			wizards.POST("/:id/ai/preview", r.wizardController.PreviewReply)

			wizards.GET("/:id/summary", r.wizardController.DownloadSummary)
			wizards.POST("/:id/summary/archive", r.wizardController.ArchiveSummary)

			wizards.GET("/:id/events", r.wizardSocketController.Events)
		}
	}

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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+
			storeapi.IdempotencyHeader+", "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
