package mongodb

import (
	"context"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
)

var _ repositories.Provider = (*Provider)(nil)

// Provider serves the whole storage surface straight from the database.
type Provider struct {
	*UserRepository
	*NoteRepository
	*CoinTransactionRepository
	*ModerationLogRepository
}

// NewProvider assembles the collection repositories of one database.
func NewProvider(users *UserRepository, notes *NoteRepository, ledger *CoinTransactionRepository, logs *ModerationLogRepository) *Provider {
	return &Provider{
		UserRepository:            users,
		NoteRepository:            notes,
		CoinTransactionRepository: ledger,
		ModerationLogRepository:   logs,
	}
}

func (p *Provider) Kind() string { return repositories.KindMongoDB }

// GetAggregateStats counts users and notes. Subscriptions and payments are not tracked here.
func (p *Provider) GetAggregateStats(ctx context.Context) (*models.AggregateStats, error) {
	users, err := p.UserRepository.Count(ctx)
	if err != nil {
		return nil, err
	}
	total, pending, downloads, err := p.NoteRepository.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &models.AggregateStats{
		TotalUsers:     users,
		TotalNotes:     total,
		PendingReviews: pending,
		PendingNotes:   pending,
		TotalDownloads: downloads,
	}, nil
}

// GetRecentActivity reports the latest moderation actions as the activity feed.
func (p *Provider) GetRecentActivity(ctx context.Context, limit int) ([]*models.Activity, error) {
	logs, err := p.ModerationLogRepository.ListModerationLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	activity := make([]*models.Activity, 0, len(logs))
	for _, l := range logs {
		activity = append(activity, &models.Activity{UserName: l.Actor, Action: l.Action, Timestamp: l.Timestamp})
	}
	return activity, nil
}
