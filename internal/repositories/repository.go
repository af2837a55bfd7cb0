package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrNoteNotFound      = errors.New("note not found")
	ErrAdminNotFound     = errors.New("admin user not found")
	ErrInvalidTransition = errors.New("note status transition not allowed")
	ErrConcurrentUpdate  = errors.New("concurrent update detected")
	ErrUnavailable       = errors.New("storage unavailable")
	ErrUserIDConflict    = errors.New("user id already belongs to another email")
)

// Provider kinds reported by Kind.
const (
	KindRemote  = "remote"
	KindMongoDB = "mongodb"
	KindLocal   = "local"
)

// UserRepository defines the interface for user data operations.
// Read methods may return (nil, nil) when the backing system cannot answer.
type UserRepository interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// NoteRepository defines the interface for note moderation.
type NoteRepository interface {
	FindNote(ctx context.Context, id string) (*models.Note, error)
	ListNotesForModeration(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error)
	// TransitionNote moves a note from one status to another only if it is currently in from.
	// It returns ErrInvalidTransition when the note is in any other status.
	TransitionNote(ctx context.Context, id string, from, to models.NoteStatus, review models.NoteReview) (*models.Note, error)
}

// LedgerRepository defines the coin ledger operations.
type LedgerRepository interface {
	// ApplyReward credits amount to the user and appends the matching transaction as one atomic step.
	ApplyReward(ctx context.Context, userID string, amount int64, details models.RewardDetails) (*models.User, *models.CoinTransaction, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error)
}

// StatsRepository defines dashboard reads.
type StatsRepository interface {
	GetAggregateStats(ctx context.Context) (*models.AggregateStats, error)
	GetRecentActivity(ctx context.Context, limit int) ([]*models.Activity, error)
}

// ModerationLogRepository defines the append-only audit trail.
type ModerationLogRepository interface {
	AppendModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error
	ListModerationLogs(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error)
}

// AdminUserRepository resolves moderator accounts for login.
type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

// Provider is the full storage surface the services run against.
type Provider interface {
	UserRepository
	NoteRepository
	LedgerRepository
	StatsRepository
	ModerationLogRepository
	Kind() string
}

// UpdateNoteStatus moves a pending note to status on behalf of reviewerID.
// It reports false when the note was not pending.
func UpdateNoteStatus(ctx context.Context, notes NoteRepository, id string, status models.NoteStatus, reviewerID string) (bool, error) {
	_, err := notes.TransitionNote(ctx, id, models.NoteStatusPending, status, models.NoteReview{
		ReviewerID: reviewerID,
		At:         time.Now().UTC(),
	})
	if errors.Is(err, ErrInvalidTransition) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AdminChain looks a moderator up in each repository in turn.
type AdminChain []AdminUserRepository

// FindByEmail returns the first match. Lookup errors are skipped so an
// unreachable database does not lock out the bootstrap account.
func (c AdminChain) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var lastErr error = ErrAdminNotFound
	for _, repo := range c {
		admin, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return admin, nil
		}
		if !errors.Is(err, ErrAdminNotFound) {
			lastErr = err
		}
	}
	return nil, lastErr
}
