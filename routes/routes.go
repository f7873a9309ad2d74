// File: /routes/routes.go
package routes

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"runcrew-api/config"
	"runcrew-api/controllers"
	"runcrew-api/middleware"
	"runcrew-api/services"
	"runcrew-api/websocket"
)

// SetupCORS allows the origins listed in CORS_ALLOWED_ORIGINS, falling
// back to local development hosts.
func SetupCORS() gin.HandlerFunc {
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
	}
	originMap := make(map[string]bool)
	for _, origin := range strings.Split(allowedOrigins, ",") {
		originMap[strings.TrimSpace(origin)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if originMap[origin] || allowedOrigins == "*" {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, hub *websocket.Hub, notificationService *services.NotificationService) {
	// Services
	relationshipService := services.NewRelationshipService(db, notificationService)
	crewService := services.NewCrewService(db)
	membershipService := services.NewMembershipService(db, notificationService)
	noticeService := services.NewNoticeService(db, notificationService)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret)
	userController := controllers.NewUserController(db, relationshipService)
	friendController := controllers.NewFriendController(db, notificationService)
	crewController := controllers.NewCrewController(crewService, membershipService)
	noticeController := controllers.NewNoticeController(noticeService)
	notificationController := controllers.NewNotificationController(notificationService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(30, 10))
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Real-time notification stream
	v1.GET("/ws", websocket.ServeWS(hub, cfg.JWTSecret))

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.GET("/:user_id", userController.GetUser)
			users.POST("/:user_id/follow", userController.Follow)
			users.DELETE("/:user_id/follow", userController.Unfollow)
			users.GET("/:user_id/followers", userController.GetFollowers)
			users.GET("/:user_id/following", userController.GetFollowing)
			users.GET("/:user_id/relation", userController.GetRelationStatus)
		}

		// Friend routes
		friends := protected.Group("/friends")
		{
			friends.GET("/", friendController.GetFriends)
			friends.POST("/request/:user_id", friendController.SendFriendRequest)
			friends.GET("/requests", friendController.GetPendingRequests)
			friends.GET("/requests/sent", friendController.GetSentRequests)
			friends.POST("/requests/:request_id/accept", friendController.AcceptFriendRequest)
			friends.POST("/requests/:request_id/reject", friendController.RejectFriendRequest)
			friends.DELETE("/:user_id", friendController.RemoveFriend)
			friends.GET("/status/:user_id", friendController.GetFriendshipStatus)
		}

		// Crew routes
		crews := protected.Group("/crews")
		{
			crews.GET("/", crewController.ListCrews)
			crews.POST("/", crewController.CreateCrew)
			crews.GET("/:crew_id", crewController.GetCrew)
			crews.PUT("/:crew_id", crewController.UpdateCrew)
			crews.POST("/:crew_id/disband", crewController.DisbandCrew)
			crews.POST("/:crew_id/join", crewController.RequestJoin)
			crews.POST("/:crew_id/leave", crewController.LeaveCrew)
			crews.GET("/:crew_id/requests", crewController.GetPendingRequests)

			crews.GET("/:crew_id/notices", noticeController.ListNotices)
			crews.POST("/:crew_id/notices", noticeController.PostNotice)
		}

		// Membership routes
		memberships := protected.Group("/memberships")
		{
			memberships.POST("/:membership_id/approve", crewController.ApproveMember)
			memberships.POST("/:membership_id/reject", crewController.RejectMember)
			memberships.POST("/:membership_id/promote", crewController.PromoteMember)
			memberships.POST("/:membership_id/transfer", crewController.TransferOwnership)
			memberships.DELETE("/:membership_id", crewController.KickMember)
		}

		// Notice routes
		notices := protected.Group("/notices")
		{
			notices.PUT("/:notice_id", noticeController.EditNotice)
			notices.DELETE("/:notice_id", noticeController.DeleteNotice)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", notificationController.GetNotifications)
			notifications.GET("/stats", notificationController.GetStats)
			notifications.GET("/unread-count", notificationController.GetUnreadCount)
			notifications.POST("/:notification_id/read", notificationController.MarkAsRead)
			notifications.POST("/read-all", notificationController.MarkAllAsRead)
			notifications.DELETE("/:notification_id", notificationController.DeleteNotification)
		}
	}
}
