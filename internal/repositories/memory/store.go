// Package memory is the in-process storage provider used when the system-of-record is unreachable.
// Data lives only for the lifetime of the process and is never synchronised back.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/google/uuid"
)

var (
	_ repositories.Provider            = (*Store)(nil)
	_ repositories.AdminUserRepository = (*Store)(nil)
)

// Store is a thread-safe map-backed Provider.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	notes        map[string]*models.Note
	admins       map[string]*models.AdminUser
	transactions []*models.CoinTransaction
	logs         []*models.ModerationLogEntry
	now          func() time.Time
}

// NewStore returns a store seeded with the example marketplace data.
func NewStore() *Store {
	s := NewEmptyStore()
	s.seed()
	return s
}

// NewEmptyStore returns a store with no data.
func NewEmptyStore() *Store {
	return &Store{
		users:  make(map[string]*models.User),
		notes:  make(map[string]*models.Note),
		admins: make(map[string]*models.AdminUser),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Kind() string { return repositories.KindLocal }

// --- users ---

func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.userByEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrUserNotFound
}

// UpsertUser matches on email. Profile fields of an existing user are replaced; coin fields are left alone.
func (s *Store) UpsertUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing := s.userByEmail(user.Email); existing != nil {
		if user.Name != "" {
			existing.Name = user.Name
		}
		if user.Role != "" {
			existing.Role = user.Role
		}
		existing.IsActive = user.IsActive
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}

	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, taken := s.users[created.ID]; taken {
		return nil, repositories.ErrUserIDConflict
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	s.users[created.ID] = &created
	cp := created
	return &cp, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) userByEmail(email string) *models.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// --- notes ---

func (s *Store) FindNote(_ context.Context, id string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, repositories.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *Store) ListNotesForModeration(_ context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]*models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if filter.Match(n) {
			cp := *n
			notes = append(notes, &cp)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return page(notes, filter.Offset, filter.Limit), nil
}

func (s *Store) TransitionNote(_ context.Context, id string, from, to models.NoteStatus, review models.NoteReview) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, repositories.ErrNoteNotFound
	}
	if n.Status != from {
		return nil, repositories.ErrInvalidTransition
	}
	if review.At.IsZero() {
		review.At = s.now()
	}
	review.Apply(n, to)
	cp := *n
	return &cp, nil
}

// PutNote inserts or replaces a note.
func (s *Store) PutNote(n *models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *n
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.notes[cp.ID] = &cp
}

// --- ledger ---

// ApplyReward holds the write lock across read, update and append, so concurrent rewards
// of the same user are serialised.
func (s *Store) ApplyReward(_ context.Context, userID string, amount int64, details models.RewardDetails) (*models.User, *models.CoinTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil, repositories.ErrUserNotFound
	}

	now := s.now()
	previous := u.CoinBalance
	u.CoinBalance = previous + amount
	u.TotalCoinsEarned += amount
	u.LastCoinReward = now
	u.UpdatedAt = now
	u.Version++

	tx := &models.CoinTransaction{
		ID:              uuid.NewString(),
		UserID:          u.ID,
		UserEmail:       u.Email,
		Amount:          amount,
		Type:            models.TransactionTypeReward,
		Reason:          details.Reason,
		NoteID:          details.NoteID,
		NoteTitle:       details.NoteTitle,
		ApprovedBy:      details.ApprovedBy,
		PreviousBalance: previous,
		NewBalance:      u.CoinBalance,
		CreatedAt:       now,
	}
	s.transactions = append(s.transactions, tx)

	userCopy, txCopy := *u, *tx
	return &userCopy, &txCopy, nil
}

// ListTransactions returns ledger rows newest first.
func (s *Store) ListTransactions(_ context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]*models.CoinTransaction, 0, len(s.transactions))
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if filter.UserID != "" && tx.UserID != filter.UserID {
			continue
		}
		cp := *tx
		txs = append(txs, &cp)
	}
	return page(txs, 0, filter.Limit), nil
}

// --- stats ---

func (s *Store) GetAggregateStats(_ context.Context) (*models.AggregateStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.AggregateStats{
		TotalUsers: int64(len(s.users)),
		TotalNotes: int64(len(s.notes)),
	}
	for _, n := range s.notes {
		if n.Status == models.NoteStatusPending {
			stats.PendingNotes++
		}
		stats.TotalDownloads += n.Downloads
	}
	stats.PendingReviews = stats.PendingNotes
	return stats, nil
}

// GetRecentActivity has no activity source locally and always returns an empty feed.
func (s *Store) GetRecentActivity(_ context.Context, _ int) ([]*models.Activity, error) {
	return []*models.Activity{}, nil
}

// --- moderation log ---

func (s *Store) AppendModerationLog(_ context.Context, entry *models.ModerationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = s.now()
	}
	s.logs = append(s.logs, &cp)
	return nil
}

// ListModerationLogs returns entries newest first.
func (s *Store) ListModerationLogs(_ context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]*models.ModerationLogEntry, 0, len(s.logs))
	for i := len(s.logs) - 1; i >= 0; i-- {
		cp := *s.logs[i]
		logs = append(logs, &cp)
	}
	return page(logs, 0, limit), nil
}

// --- admins ---

// PutAdmin registers a moderator account.
func (s *Store) PutAdmin(admin *models.AdminUser) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *admin
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	s.admins[strings.ToLower(cp.Email)] = &cp
}

func (s *Store) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[strings.ToLower(email)]
	if !ok {
		return nil, repositories.ErrAdminNotFound
	}
	cp := *a
	return &cp, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
