package services

import (
	"context"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"golang.org/x/exp/slog"
)

var _ AuditService = (*AuditServiceImpl)(nil)

// AuditServiceImpl appends moderation log entries to the bound provider
type AuditServiceImpl struct {
	logs repositories.ModerationLogRepository
}

// NewAuditService creates a new AuditServiceImpl
func NewAuditService(logs repositories.ModerationLogRepository) *AuditServiceImpl {
	return &AuditServiceImpl{logs: logs}
}

// Record appends an entry. Failures are logged and never returned.
func (s *AuditServiceImpl) Record(ctx context.Context, action string, details map[string]any, actor string) {
	if details == nil {
		details = map[string]any{}
	}
	entry := &models.ModerationLogEntry{
		Action:    action,
		Details:   details,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
	if err := s.logs.AppendModerationLog(ctx, entry); err != nil {
		slog.Error("Failed to record moderation action", "action", action, "actor", actor, "error", err)
	}
}

// Recent returns the latest entries first
func (s *AuditServiceImpl) Recent(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	return s.logs.ListModerationLogs(ctx, limit)
}
