package handler

import (
	"net/http"

	"ridechat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type reportRequest struct {
	ReportedUserID string `json:"reported_user_id" binding:"required"`
	RoomID         string `json:"room_id"`
	Reason         string `json:"reason" binding:"required"`
	Severity       string `json:"severity"`
}

// FileReport accepts a safety report against another rider.
func (h *Handler) FileReport(c *gin.Context) {
	userID := c.GetString("user_id")

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reported_user_id and reason are required"})
		return
	}
	if req.Severity == "" {
		req.Severity = "Low"
	}

	report := &models.Report{
		ReporterID:     userID,
		ReportedUserID: req.ReportedUserID,
		RoomID:         req.RoomID,
		Reason:         req.Reason,
		Severity:       req.Severity,
	}
	if err := h.Safety.HandleReport(report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to file report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report_id": report.ReportID})
}
