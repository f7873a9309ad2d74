// File: /controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"runcrew-api/models"
	"runcrew-api/services"
	"runcrew-api/utils"
)

type UserController struct {
	db            *gorm.DB
	relationships *services.RelationshipService
}

func NewUserController(db *gorm.DB, relationships *services.RelationshipService) *UserController {
	return &UserController{
		db:            db,
		relationships: relationships,
	}
}

// GetProfile returns the authenticated user's own profile
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUser returns another user's public profile with the relation status
// as seen by the caller.
func (uc *UserController) GetUser(c *gin.Context) {
	viewerID := c.GetString("user_id")
	targetID := c.Param("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	status := models.RelationNone
	if viewerID != targetID {
		var err error
		status, err = uc.relationships.Status(viewerID, targetID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	user.Password = ""
	user.Email = ""
	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"relation_status": status,
	})
}

type UpdateProfileRequest struct {
	Nickname *string `json:"nickname"`
	Avatar   *string `json:"avatar"`

	NotificationsEnabled *bool `json:"notifications_enabled"`
	NotifyPersonalBest   *bool `json:"notify_personal_best"`
	NotifyCrew           *bool `json:"notify_crew"`
	NotifyRelations      *bool `json:"notify_relations"`
}

// UpdateProfile updates nickname, avatar and notification preferences.
// Only fields present in the request body are touched.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Nickname != nil {
		if *req.Nickname == "" {
			utils.SendValidationError(c, "Nickname cannot be empty")
			return
		}
		updates["nickname"] = *req.Nickname
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *req.NotificationsEnabled
	}
	if req.NotifyPersonalBest != nil {
		updates["notify_personal_best"] = *req.NotifyPersonalBest
	}
	if req.NotifyCrew != nil {
		updates["notify_crew"] = *req.NotifyCrew
	}
	if req.NotifyRelations != nil {
		updates["notify_relations"] = *req.NotifyRelations
	}

	if len(updates) == 0 {
		utils.SendValidationError(c, "No fields to update")
		return
	}

	if err := uc.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	user.Password = ""
	utils.SendSuccess(c, "Profile updated successfully", user)
}

// Follow creates a follow edge from the caller to the target user
func (uc *UserController) Follow(c *gin.Context) {
	followerID := c.GetString("user_id")
	followingID := c.Param("user_id")

	if err := uc.relationships.Follow(c.Request.Context(), followerID, followingID); err != nil {
		respondError(c, err)
		return
	}

	status, err := uc.relationships.Status(followerID, followingID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Followed successfully", gin.H{"relation_status": status})
}

// Unfollow removes the follow edge from the caller to the target user
func (uc *UserController) Unfollow(c *gin.Context) {
	followerID := c.GetString("user_id")
	followingID := c.Param("user_id")

	if err := uc.relationships.Unfollow(c.Request.Context(), followerID, followingID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Unfollowed successfully", nil)
}

// GetFollowers lists the users following the target user
func (uc *UserController) GetFollowers(c *gin.Context) {
	targetID := c.Param("user_id")

	followers, err := uc.relationships.Followers(targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

// GetFollowing lists the users the target user follows
func (uc *UserController) GetFollowing(c *gin.Context) {
	targetID := c.Param("user_id")

	following, err := uc.relationships.Following(targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}

// GetRelationStatus returns the derived follow relation between the
// caller and the target user.
func (uc *UserController) GetRelationStatus(c *gin.Context) {
	viewerID := c.GetString("user_id")
	targetID := c.Param("user_id")

	if viewerID == targetID {
		c.JSON(http.StatusOK, gin.H{"relation_status": models.RelationNone})
		return
	}

	status, err := uc.relationships.Status(viewerID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"relation_status": status})
}
