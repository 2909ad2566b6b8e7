package router

import (
	"github.com/gin-gonic/gin"

	"github.com/antirek/bank/config"
	"github.com/antirek/bank/internal/app/controller"
	"github.com/antirek/bank/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	userController         *controller.UserController
	businessController     *controller.BusinessController
	subscriptionController *controller.SubscriptionController
	dialogController       *controller.DialogController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	businessController *controller.BusinessController,
	subscriptionController *controller.SubscriptionController,
	dialogController *controller.DialogController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		userController:         userController,
		businessController:     businessController,
		subscriptionController: subscriptionController,
		dialogController:       dialogController,
		uploadController:       uploadController,
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
			"message": "Bank API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/send-code", r.authController.SendCode)
			auth.POST("/verify-code", r.authController.VerifyCode)
		}

		users := v1.Group("/users", r.authMiddleware.Authenticate())
		{
			users.GET("", r.userController.List)
			users.GET("/:id", r.userController.Get)
			users.POST("", r.userController.Create)
			users.PUT("/:id", r.userController.UpdateProfile)
		}

		businesses := v1.Group("/businesses")
		{
			businesses.GET("", r.businessController.List)
			businesses.GET("/my", r.authMiddleware.Authenticate(), r.businessController.ListMine)
			businesses.GET("/slug/:slug", r.businessController.GetBySlug)
			businesses.GET("/:id", r.businessController.Get)
			businesses.POST("", r.authMiddleware.Authenticate(), r.businessController.Create)
			businesses.PUT("/:id", r.authMiddleware.Authenticate(), r.businessController.Update)
			businesses.DELETE("/:id", r.authMiddleware.Authenticate(), r.businessController.Deactivate)

			businesses.POST("/:id/subscribe", r.authMiddleware.Authenticate(), r.subscriptionController.Subscribe)
			businesses.DELETE("/:id/subscribe", r.authMiddleware.Authenticate(), r.subscriptionController.Unsubscribe)
			businesses.GET("/:id/subscribers", r.authMiddleware.Authenticate(), r.subscriptionController.ListSubscribers)
			businesses.GET("/:id/subscribers/export", r.authMiddleware.Authenticate(), r.subscriptionController.ExportSubscribers)
			businesses.GET("/:id/dialogs", r.authMiddleware.Authenticate(), r.dialogController.ListForBusiness)
		}

		v1.GET("/subscriptions", r.authMiddleware.Authenticate(), r.subscriptionController.ListMine)

		dialogs := v1.Group("/dialogs", r.authMiddleware.Authenticate())
		{
			dialogs.POST("", r.dialogController.Start)
			dialogs.GET("", r.dialogController.ListMine)
			dialogs.GET("/:id", r.dialogController.Get)
			dialogs.GET("/:id/messages", r.dialogController.ListMessages)
			dialogs.POST("/:id/messages", r.dialogController.SendMessage)
			dialogs.POST("/:id/read", r.dialogController.MarkRead)
		}

		uploads := v1.Group("/uploads", r.authMiddleware.Authenticate())
		{
			uploads.POST("/presigned-url", r.uploadController.GetPresignedURL)
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
