package handlers

import (
	"net/http"

	"github.com/ArowuTest/masterstudent-moderation/internal/coinsync"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/gin-gonic/gin"
)

// SystemHandler reports on storage binding and sync health
type SystemHandler struct {
	binding *repositories.Binding
	outbox  coinsync.OutboxStore
}

// NewSystemHandler creates a new SystemHandler. outbox may be nil in direct sync mode.
func NewSystemHandler(binding *repositories.Binding, outbox coinsync.OutboxStore) *SystemHandler {
	return &SystemHandler{
		binding: binding,
		outbox:  outbox,
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": h.binding.Kind()})
}

// GetStorage handles GET /admin/storage
func (h *SystemHandler) GetStorage(c *gin.Context) {
	kind := h.binding.Kind()
	c.JSON(http.StatusOK, gin.H{
		"kind":     kind,
		"fallback": kind == repositories.KindLocal,
	})
}

// GetPendingSync handles GET /admin/sync/pending
func (h *SystemHandler) GetPendingSync(c *gin.Context) {
	if h.outbox == nil {
		c.JSON(http.StatusOK, gin.H{"mode": "direct", "pending": []any{}, "total": 0})
		return
	}
	pending, err := h.outbox.Pending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync outbox: " + err.Error()})
		return
	}
	parked := 0
	for _, e := range pending {
		if e.Parked {
			parked++
		}
	}
	c.JSON(http.StatusOK, gin.H{"mode": "outbox", "pending": pending, "total": len(pending), "parked": parked})
}
