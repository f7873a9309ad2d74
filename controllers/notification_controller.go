// File: /controllers/notification_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"runcrew-api/services"
	"runcrew-api/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GetNotifications returns the caller's notifications, newest first.
// An optional type query filters to a single notification type.
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	notificationType := c.Query("type")

	result, err := nc.notifications.GetNotifications(userID, page, limit, notificationType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (nc *NotificationController) GetStats(c *gin.Context) {
	userID := c.GetString("user_id")

	stats, err := nc.notifications.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	userID := c.GetString("user_id")

	count, err := nc.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("notification_id")

	if err := nc.notifications.MarkAsRead(c.Request.Context(), userID, notificationID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Notification marked as read", nil)
}

func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := nc.notifications.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "All notifications marked as read", nil)
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("notification_id")

	if err := nc.notifications.Delete(c.Request.Context(), userID, notificationID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Notification deleted", nil)
}
