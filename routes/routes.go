package routes

import (
	"quiz-unlock-api/controllers"
	"quiz-unlock-api/middleware"
	"quiz-unlock-api/models"

	"github.com/gin-gonic/gin"
)

// RoleGrader is the service identity of the grading/violation detector that
// opens lock records. It holds no unlock authority.
const RoleGrader = "grader"

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Quiz Unlock API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Lock records
			locks := protected.Group("/locks")
			{
				// Per-tier dashboards
				locks.GET("/teacher", middleware.RequireRole(models.TierTeacher), controllers.GetTeacherLocks)
				locks.GET("/hod", middleware.RequireRole(models.TierHod), controllers.GetHODLocks)
				locks.GET("/dean", middleware.RequireRole(models.TierDean), controllers.GetDeanLocks)
				locks.GET("/admin", middleware.RequireRole(models.TierAdmin), controllers.GetAdminLocks)

				locks.GET("/:id", controllers.GetLock)

				// Any unlock tier may attempt; the policy decides
				locks.POST("/:id/unlock",
					middleware.RequireRole(models.TierTeacher, models.TierHod, models.TierDean, models.TierAdmin),
					controllers.UnlockQuiz)

				// Only the grading collaborator (or an admin) opens locks
				locks.POST("", middleware.RequireRole(RoleGrader, models.TierAdmin), controllers.CreateLock)
			}

			// Merged unlock history for a student+quiz pair
			protected.GET("/students/:student_id/quizzes/:quiz_id/unlock-history", controllers.GetUnlockHistory)
		}

	}

	// 404 catch-all
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
