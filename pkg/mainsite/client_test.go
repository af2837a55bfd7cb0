package mainsite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCoinsSendsBodyAndHeaders(t *testing.T) {
	var (
		got     SyncCoinsRequest
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shared-key", time.Second)
	err := c.SyncCoins(context.Background(), "tx-1", SyncCoinsRequest{
		UserID: "u1", CoinAmount: 20, Reason: "Note Approved", Source: "moderation_service",
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, int64(20), got.CoinAmount)
	assert.Equal(t, "Note Approved", got.Reason)
	assert.Equal(t, "moderation_service", got.Source)
	assert.Equal(t, "shared-key", headers.Get("X-Admin-Key"))
	assert.Equal(t, "tx-1", headers.Get("Idempotency-Key"))
}

func TestSyncCoinsReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Missing userId or coinAmount", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", time.Second).SyncCoins(context.Background(), "", SyncCoinsRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSyncCoinsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(srv.URL, "", 50*time.Millisecond).SyncCoins(context.Background(), "k", SyncCoinsRequest{UserID: "u1"})
	assert.Error(t, err)
}
