package routes

import (
	"application-evaluator-api/controllers"
	"application-evaluator-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Application Evaluator API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Application rounds
			rounds := protected.Group("/application-rounds")
			{
				rounds.GET("", controllers.GetApplicationRounds)
				rounds.GET("/:id", controllers.GetApplicationRound)
				rounds.POST("/:id/submit", controllers.SubmitApplicationRound)

				// Only staff can clone rounds
				rounds.POST("/:id/clone", middleware.RequireStaff(), controllers.CloneApplicationRound)
			}

			// Applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.POST("/:id/approve", controllers.ApproveApplication)
				applications.POST("/:id/unapprove", controllers.UnapproveApplication)
			}

			// Scores
			scores := protected.Group("/scores")
			{
				scores.POST("", controllers.CreateScore)
				scores.PUT("/:id", controllers.UpdateScore)
				scores.DELETE("/:id", controllers.DeleteScore)
			}

			// Comments
			comments := protected.Group("/comments")
			{
				comments.POST("", controllers.CreateComment)
				comments.PUT("/:id", controllers.UpdateComment)
				comments.DELETE("/:id", controllers.DeleteComment)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
