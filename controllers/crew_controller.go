// File: /controllers/crew_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"runcrew-api/services"
	"runcrew-api/utils"
)

type CrewController struct {
	crews       *services.CrewService
	memberships *services.MembershipService
}

func NewCrewController(crews *services.CrewService, memberships *services.MembershipService) *CrewController {
	return &CrewController{
		crews:       crews,
		memberships: memberships,
	}
}

func (cc *CrewController) CreateCrew(c *gin.Context) {
	userID := c.GetString("user_id")

	var params services.CrewParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crew, err := cc.crews.CreateCrew(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendCreated(c, "Crew created successfully", crew)
}

func (cc *CrewController) UpdateCrew(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	var params services.CrewParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crew, err := cc.crews.UpdateCrew(c.Request.Context(), userID, crewID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Crew updated successfully", crew)
}

type DisbandRequest struct {
	ConfirmName string `json:"confirm_name" binding:"required"`
}

// DisbandCrew tears the crew down. The request body must repeat the crew
// name exactly; a mismatch aborts with no change.
func (cc *CrewController) DisbandCrew(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	var req DisbandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := cc.crews.Disband(c.Request.Context(), userID, crewID, req.ConfirmName); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Crew disbanded successfully", nil)
}

func (cc *CrewController) GetCrew(c *gin.Context) {
	crewID := c.Param("crew_id")

	crew, members, err := cc.crews.GetCrew(crewID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"crew":    crew,
		"members": members,
	})
}

func (cc *CrewController) ListCrews(c *gin.Context) {
	region := c.Query("region")
	tag := c.Query("tag")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	crews, total, err := cc.crews.ListCrews(region, tag, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendPaginated(c, crews, page, limit, total)
}

func (cc *CrewController) RequestJoin(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	membership, err := cc.memberships.RequestJoin(c.Request.Context(), userID, crewID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendCreated(c, "Join request submitted", membership)
}

func (cc *CrewController) ApproveMember(c *gin.Context) {
	userID := c.GetString("user_id")
	membershipID := c.Param("membership_id")

	if err := cc.memberships.Approve(c.Request.Context(), userID, membershipID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Member approved", nil)
}

func (cc *CrewController) RejectMember(c *gin.Context) {
	userID := c.GetString("user_id")
	membershipID := c.Param("membership_id")

	if err := cc.memberships.Reject(c.Request.Context(), userID, membershipID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Join request rejected", nil)
}

func (cc *CrewController) PromoteMember(c *gin.Context) {
	userID := c.GetString("user_id")
	membershipID := c.Param("membership_id")

	if err := cc.memberships.PromoteToAdmin(c.Request.Context(), userID, membershipID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Member promoted to admin", nil)
}

func (cc *CrewController) TransferOwnership(c *gin.Context) {
	userID := c.GetString("user_id")
	membershipID := c.Param("membership_id")

	if err := cc.memberships.TransferOwnership(c.Request.Context(), userID, membershipID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Ownership transferred", nil)
}

func (cc *CrewController) KickMember(c *gin.Context) {
	userID := c.GetString("user_id")
	membershipID := c.Param("membership_id")

	if err := cc.memberships.Kick(c.Request.Context(), userID, membershipID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Member removed", nil)
}

func (cc *CrewController) LeaveCrew(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	if err := cc.memberships.Leave(c.Request.Context(), userID, crewID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Left crew", nil)
}

func (cc *CrewController) GetPendingRequests(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	requests, err := cc.memberships.PendingRequests(userID, crewID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
