package services

import (
	"context"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
)

// Listing limits applied when the caller does not ask for one.
const (
	DefaultTransactionLimit = 100
	DefaultLogLimit         = 50
	DefaultActivityLimit    = 20
)

var _ DashboardService = (*DashboardServiceImpl)(nil)

// DashboardServiceImpl serves the admin read views and records who looked at them
type DashboardServiceImpl struct {
	provider repositories.Provider
	audit    AuditService
}

// NewDashboardService creates a new DashboardServiceImpl
func NewDashboardService(provider repositories.Provider, audit AuditService) *DashboardServiceImpl {
	return &DashboardServiceImpl{provider: provider, audit: audit}
}

// Stats returns zeroed counters when the provider has no data.
func (s *DashboardServiceImpl) Stats(ctx context.Context, actor string) (*models.AggregateStats, error) {
	stats, err := s.provider.GetAggregateStats(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &models.AggregateStats{}
	}
	s.audit.Record(ctx, models.ActionViewStats, nil, actor)
	return stats, nil
}

func (s *DashboardServiceImpl) Activity(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return s.provider.GetRecentActivity(ctx, limit)
}

func (s *DashboardServiceImpl) Users(ctx context.Context, actor string) ([]*models.User, error) {
	users, err := s.provider.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.ActionViewUsers, map[string]any{"count": len(users)}, actor)
	return users, nil
}

func (s *DashboardServiceImpl) Notes(ctx context.Context, filter models.NoteFilter, actor string) ([]*models.Note, error) {
	notes, err := s.provider.ListNotesForModeration(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.ActionViewNotes, map[string]any{"count": len(notes), "status": string(filter.Status)}, actor)
	return notes, nil
}

func (s *DashboardServiceImpl) Transactions(ctx context.Context, filter models.TransactionFilter, actor string) ([]*models.CoinTransaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultTransactionLimit
	}
	txs, err := s.provider.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.ActionViewCoinTransactions, map[string]any{"count": len(txs)}, actor)
	return txs, nil
}

func (s *DashboardServiceImpl) Logs(ctx context.Context, limit int, actor string) ([]*models.ModerationLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	logs, err := s.audit.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.ActionViewLogs, map[string]any{"count": len(logs)}, actor)
	return logs, nil
}
