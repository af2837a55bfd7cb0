package handlers

import (
	"net/http"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/services"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the dashboard read views
type AdminHandler struct {
	dashboardService services.DashboardService
	ledgerService    services.LedgerService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(dashboardService services.DashboardService, ledgerService services.LedgerService) *AdminHandler {
	return &AdminHandler{
		dashboardService: dashboardService,
		ledgerService:    ledgerService,
	}
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetActivity handles GET /admin/activity
func (h *AdminHandler) GetActivity(c *gin.Context) {
	activity, err := h.dashboardService.Activity(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get activity: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, activity)
}

// GetUsers handles GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.dashboardService.Users(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get users: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetNotes handles GET /admin/notes
func (h *AdminHandler) GetNotes(c *gin.Context) {
	var filter models.NoteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + string(filter.Status)})
		return
	}

	notes, err := h.dashboardService.Notes(c.Request.Context(), filter, actorFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get notes: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes, "total": len(notes)})
}

// GetCoinTransactions handles GET /admin/coins
func (h *AdminHandler) GetCoinTransactions(c *gin.Context) {
	filter := models.TransactionFilter{
		UserID: c.Query("userId"),
		Limit:  queryInt(c, "limit", 0),
	}
	txs, err := h.dashboardService.Transactions(c.Request.Context(), filter, actorFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get coin transactions: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// GetUserBalance handles GET /admin/users/:id/balance
func (h *AdminHandler) GetUserBalance(c *gin.Context) {
	user, err := h.ledgerService.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get balance: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":      user.ID,
		"email":       user.Email,
		"coins":       user.CoinBalance,
		"totalEarned": user.TotalCoinsEarned,
	})
}

// GetLogs handles GET /admin/logs
func (h *AdminHandler) GetLogs(c *gin.Context) {
	logs, err := h.dashboardService.Logs(c.Request.Context(), queryInt(c, "limit", 0), actorFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to get logs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}
