package repositories_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories/memory"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsServer(healthy *atomic.Bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"totalUsers": 1})
	}))
}

func TestSelectPrefersReachablePrimary(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := statsServer(&healthy)
	defer srv.Close()

	sel := repositories.NewSelector(remote.NewClient(srv.URL, "", time.Second), memory.NewStore(), time.Second)
	b := sel.Select(context.Background())

	assert.Equal(t, repositories.KindRemote, b.Kind())
}

func TestSelectFallsBackWhenPrimaryUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	sel := repositories.NewSelector(remote.NewClient(addr, "", 200*time.Millisecond), memory.NewStore(), time.Second)
	b := sel.Select(context.Background())
	require.Equal(t, repositories.KindLocal, b.Kind())

	ctx := context.Background()
	stats, err := b.GetAggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalUsers)

	user, tx, err := b.ApplyReward(ctx, "5", 20, models.RewardDetails{Reason: models.ReasonNoteApproved, NoteID: "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(910), user.CoinBalance)
	assert.Equal(t, int64(890), tx.PreviousBalance)
	assert.Equal(t, int64(910), tx.NewBalance)

	reread, err := b.FindUserByID(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, int64(910), reread.CoinBalance)
	assert.Equal(t, int64(910), reread.TotalCoinsEarned)

	txs, err := b.ListTransactions(ctx, models.TransactionFilter{UserID: "5"})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestSelectWithoutPrimary(t *testing.T) {
	sel := repositories.NewSelector(nil, memory.NewStore(), 0)
	assert.Equal(t, repositories.KindLocal, sel.Select(context.Background()).Kind())
}

func TestWatchUpgradesToPrimary(t *testing.T) {
	var healthy atomic.Bool
	srv := statsServer(&healthy)
	defer srv.Close()

	sel := repositories.NewSelector(remote.NewClient(srv.URL, "", time.Second), memory.NewStore(), time.Second)
	b := sel.Select(context.Background())
	require.Equal(t, repositories.KindLocal, b.Kind())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sel.Watch(ctx, b, 20*time.Millisecond)
		close(done)
	}()

	healthy.Store(true)
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("watch did not upgrade the binding")
	}
	assert.Equal(t, repositories.KindRemote, b.Kind())
}

func TestWatchStopsOnCancel(t *testing.T) {
	var healthy atomic.Bool
	srv := statsServer(&healthy)
	defer srv.Close()

	sel := repositories.NewSelector(remote.NewClient(srv.URL, "", time.Second), memory.NewStore(), time.Second)
	b := sel.Select(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sel.Watch(ctx, b, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch ignored cancellation")
	}
	assert.Equal(t, repositories.KindLocal, b.Kind())
}

type adminMap map[string]*models.AdminUser

func (m adminMap) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	if a, ok := m[email]; ok {
		return a, nil
	}
	return nil, repositories.ErrAdminNotFound
}

type brokenAdmins struct{}

func (brokenAdmins) FindByEmail(context.Context, string) (*models.AdminUser, error) {
	return nil, errors.New("connection refused")
}

func TestAdminChain(t *testing.T) {
	ctx := context.Background()
	boot := adminMap{"admin@masterstudent.com": {ID: "1", Email: "admin@masterstudent.com"}}

	chain := repositories.AdminChain{brokenAdmins{}, boot}
	a, err := chain.FindByEmail(ctx, "admin@masterstudent.com")
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)

	_, err = repositories.AdminChain{boot}.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrAdminNotFound)

	_, err = chain.FindByEmail(ctx, "nobody@example.com")
	assert.EqualError(t, err, "connection refused")
}
