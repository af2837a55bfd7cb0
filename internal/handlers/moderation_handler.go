package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// ModerationHandler handles note approval and rejection
type ModerationHandler struct {
	moderationService services.ModerationService
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(moderationService services.ModerationService) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
	}
}

// Approve handles POST /admin/notes/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	noteID := c.Param("id")

	result, err := h.moderationService.Approve(c.Request.Context(), noteID, actorFrom(c))
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, services.ErrRewardFailed) || status == http.StatusInternalServerError {
			status = http.StatusInternalServerError
			slog.Error("Approve note failed", "noteId", noteID, "error", err)
			c.JSON(status, gin.H{"success": false, "message": "Failed to approve note"})
			return
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("Note approved successfully and %d coins awarded to user", result.CoinReward),
		"coinReward": result.CoinReward,
		"userId":     result.Note.UserID,
		"note":       result.Note,
	})
}

// Reject handles POST /admin/notes/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	noteID := c.Param("id")

	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	note, err := h.moderationService.Reject(c.Request.Context(), noteID, req.Reason, actorFrom(c))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("Reject note failed", "noteId", noteID, "error", err)
			c.JSON(status, gin.H{"success": false, "message": "Failed to reject note"})
			return
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Note rejected successfully",
		"note":    note,
	})
}
