package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/masterstudent-moderation/internal/metrics"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"golang.org/x/exp/slog"
)

// ErrInvalidAmount is returned for non-positive rewards.
var ErrInvalidAmount = errors.New("reward amount must be positive")

var _ LedgerService = (*LedgerServiceImpl)(nil)

// LedgerServiceImpl writes rewards through the bound storage provider
type LedgerServiceImpl struct {
	users     repositories.UserRepository
	ledger    repositories.LedgerRepository
	forwarder SyncForwarder
}

// NewLedgerService creates a new LedgerServiceImpl
func NewLedgerService(provider repositories.Provider, forwarder SyncForwarder) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		users:     provider,
		ledger:    provider,
		forwarder: forwarder,
	}
}

// Reward applies the reward atomically on the provider, then forwards it to the main site.
// The forwarding outcome never changes the result.
func (s *LedgerServiceImpl) Reward(ctx context.Context, userID string, amount int64, details models.RewardDetails) (*models.CoinTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if details.Reason == "" {
		details.Reason = models.ReasonNoteApproved
	}

	user, tx, err := s.ledger.ApplyReward(ctx, userID, amount, details)
	if err != nil {
		metrics.RewardFailures.Inc()
		if errors.Is(err, repositories.ErrUserNotFound) {
			slog.Warn("User not found for coin reward", "userId", userID)
		} else {
			slog.Error("Failed to apply coin reward", "userId", userID, "amount", amount, "error", err)
		}
		return nil, fmt.Errorf("failed to reward user %s: %w", userID, err)
	}

	metrics.RewardsApplied.Inc()
	metrics.CoinsAwarded.Add(float64(amount))
	slog.Info("Coins rewarded", "userId", userID, "email", user.Email, "amount", amount,
		"previousBalance", tx.PreviousBalance, "newBalance", tx.NewBalance, "noteId", details.NoteID)

	if s.forwarder != nil {
		s.forwarder.Forward(ctx, models.SyncRequest{
			IdempotencyKey: tx.ID,
			UserID:         userID,
			Email:          tx.UserEmail,
			CoinAmount:     amount,
			Reason:         details.Reason,
		})
	}
	return tx, nil
}

// Balance returns the user with current coin totals
func (s *LedgerServiceImpl) Balance(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, repositories.ErrUnavailable
	}
	return user, nil
}

// Transactions lists ledger rows newest first
func (s *LedgerServiceImpl) Transactions(ctx context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error) {
	return s.ledger.ListTransactions(ctx, filter)
}
