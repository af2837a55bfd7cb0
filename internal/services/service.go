package services

import (
	"context"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
)

// AuthService defines the interface for moderator authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (string, error) // Returns JWT token
}

// LedgerService defines the coin ledger writer
type LedgerService interface {
	// Reward credits amount coins to the user, records the transaction and hands the
	// mutation to the main site sync. Success means a non-nil transaction and nil error.
	Reward(ctx context.Context, userID string, amount int64, details models.RewardDetails) (*models.CoinTransaction, error)
	Balance(ctx context.Context, userID string) (*models.User, error)
	Transactions(ctx context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error)
}

// ModerationService defines note approval and rejection
type ModerationService interface {
	Approve(ctx context.Context, noteID, actor string) (*ApprovalResult, error)
	Reject(ctx context.Context, noteID, reason, actor string) (*models.Note, error)
}

// AuditService defines the moderation action log
type AuditService interface {
	Record(ctx context.Context, action string, details map[string]any, actor string)
	Recent(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error)
}

// DashboardService defines the admin read views
type DashboardService interface {
	Stats(ctx context.Context, actor string) (*models.AggregateStats, error)
	Activity(ctx context.Context, limit int) ([]*models.Activity, error)
	Users(ctx context.Context, actor string) ([]*models.User, error)
	Notes(ctx context.Context, filter models.NoteFilter, actor string) ([]*models.Note, error)
	Transactions(ctx context.Context, filter models.TransactionFilter, actor string) ([]*models.CoinTransaction, error)
	Logs(ctx context.Context, limit int, actor string) ([]*models.ModerationLogEntry, error)
}

// SyncForwarder hands a ledger mutation to the main site. It must not fail the caller.
type SyncForwarder interface {
	Forward(ctx context.Context, req models.SyncRequest)
}

// ApprovalResult is the outcome of a successful approval
type ApprovalResult struct {
	Note        *models.Note            `json:"note"`
	Transaction *models.CoinTransaction `json:"transaction"`
	CoinReward  int64                   `json:"coinReward"`
}
