// File: /controllers/notice_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"runcrew-api/services"
	"runcrew-api/utils"
)

type NoticeController struct {
	notices *services.NoticeService
}

func NewNoticeController(notices *services.NoticeService) *NoticeController {
	return &NoticeController{notices: notices}
}

func (nc *NoticeController) PostNotice(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	var params services.NoticeParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notice, err := nc.notices.PostNotice(c.Request.Context(), userID, crewID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendCreated(c, "Notice posted successfully", notice)
}

func (nc *NoticeController) EditNotice(c *gin.Context) {
	userID := c.GetString("user_id")
	noticeID := c.Param("notice_id")

	var params services.NoticeParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notice, err := nc.notices.EditNotice(c.Request.Context(), userID, noticeID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Notice updated successfully", notice)
}

func (nc *NoticeController) DeleteNotice(c *gin.Context) {
	userID := c.GetString("user_id")
	noticeID := c.Param("notice_id")

	if err := nc.notices.DeleteNotice(c.Request.Context(), userID, noticeID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Notice deleted successfully", nil)
}

func (nc *NoticeController) ListNotices(c *gin.Context) {
	userID := c.GetString("user_id")
	crewID := c.Param("crew_id")

	notices, err := nc.notices.ListNotices(c.Request.Context(), userID, crewID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notices": notices})
}
