package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreSeedsExampleData(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	admin, err := s.FindUserByEmail(ctx, "admin@masterstudent.com")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	pending, err := s.ListNotesForModeration(ctx, models.NoteFilter{Status: models.NoteStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Mathematics - Calculus Basics", pending[0].Title)

	stats, err := s.GetAggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.TotalNotes)
	assert.Equal(t, int64(1), stats.PendingNotes)
	assert.Equal(t, int64(77), stats.TotalDownloads)
}

func TestApplyRewardArithmetic(t *testing.T) {
	s := NewEmptyStore()
	ctx := context.Background()
	_, err := s.UpsertUser(ctx, &models.User{ID: "u1", Email: "u1@example.com", CoinBalance: 100, TotalCoinsEarned: 500})
	require.NoError(t, err)

	amounts := []int64{20, 20, 5, 55}
	for _, a := range amounts {
		_, _, err := s.ApplyReward(ctx, "u1", a, models.RewardDetails{Reason: models.ReasonNoteApproved})
		require.NoError(t, err)
	}

	u, err := s.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), u.CoinBalance)
	assert.Equal(t, int64(600), u.TotalCoinsEarned)

	txs, err := s.ListTransactions(ctx, models.TransactionFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, txs, len(amounts))
	for _, tx := range txs {
		assert.Equal(t, tx.Amount, tx.NewBalance-tx.PreviousBalance)
	}
	// newest first
	assert.Equal(t, int64(55), txs[0].Amount)
	assert.Equal(t, int64(200), txs[0].NewBalance)
}

func TestApplyRewardUnknownUserWritesNothing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, _, err := s.ApplyReward(ctx, "missing", 20, models.RewardDetails{})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	txs, err := s.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestApplyRewardConcurrentSameUser(t *testing.T) {
	s := NewEmptyStore()
	ctx := context.Background()
	_, err := s.UpsertUser(ctx, &models.User{ID: "u1", Email: "u1@example.com", CoinBalance: 100})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.ApplyReward(ctx, "u1", 20, models.RewardDetails{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := s.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100+50*20), u.CoinBalance)
}

func TestTransitionNoteIsConditional(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	n, err := s.TransitionNote(ctx, "2", models.NoteStatusPending, models.NoteStatusApproved,
		models.NoteReview{ReviewerID: "admin@masterstudent.com", CoinReward: 20})
	require.NoError(t, err)
	assert.Equal(t, models.NoteStatusApproved, n.Status)
	assert.Equal(t, int64(20), n.CoinReward)
	assert.NotNil(t, n.ApprovedAt)

	_, err = s.TransitionNote(ctx, "2", models.NoteStatusPending, models.NoteStatusApproved, models.NoteReview{})
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	_, err = s.TransitionNote(ctx, "nope", models.NoteStatusPending, models.NoteStatusApproved, models.NoteReview{})
	assert.ErrorIs(t, err, repositories.ErrNoteNotFound)
}

func TestUpdateNoteStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	ok, err := repositories.UpdateNoteStatus(ctx, s, "2", models.NoteStatusRejected, "mod@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.FindNote(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.NoteStatusRejected, n.Status)
	assert.Equal(t, "mod@example.com", n.RejectedBy)

	ok, err = repositories.UpdateNoteStatus(ctx, s, "2", models.NoteStatusApproved, "mod@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertUserKeepsCoins(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.UpsertUser(ctx, &models.User{Email: "jane.smith@topper.com", Name: "Jane S.", CoinBalance: 0, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "3", u.ID)
	assert.Equal(t, "Jane S.", u.Name)
	assert.Equal(t, int64(1250), u.CoinBalance)

	created, err := s.UpsertUser(ctx, &models.User{Email: "new@student.com", Name: "New"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestUpsertUserRejectsIDOfAnotherUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.UpsertUser(ctx, &models.User{ID: "3", Email: "someone.else@x.com", Name: "Someone"})
	assert.ErrorIs(t, err, repositories.ErrUserIDConflict)

	jane, err := s.FindUserByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "jane.smith@topper.com", jane.Email)
	assert.Equal(t, int64(1250), jane.CoinBalance)
	assert.Equal(t, int64(1250), jane.TotalCoinsEarned)

	byEmail, err := s.FindUserByEmail(ctx, "jane.smith@topper.com")
	require.NoError(t, err)
	assert.Equal(t, "3", byEmail.ID)

	_, err = s.FindUserByEmail(ctx, "someone.else@x.com")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.FindUserByID(ctx, "3")
	require.NoError(t, err)
	u.CoinBalance = 0

	again, err := s.FindUserByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), again.CoinBalance)
}

func TestModerationLogNewestFirst(t *testing.T) {
	s := NewEmptyStore()
	ctx := context.Background()

	for _, action := range []string{models.ActionViewNotes, models.ActionNoteApproved, models.ActionViewLogs} {
		require.NoError(t, s.AppendModerationLog(ctx, &models.ModerationLogEntry{Action: action}))
	}

	logs, err := s.ListModerationLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActionViewLogs, logs[0].Action)
	assert.Equal(t, models.ActionNoteApproved, logs[1].Action)
	assert.NotEmpty(t, logs[0].ID)
}
