package coinsync

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/pkg/mainsite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSender fails the first failures calls, then succeeds.
type scriptedSender struct {
	mu       sync.Mutex
	failures int
	calls    []string
	bodies   []mainsite.SyncCoinsRequest
}

func (s *scriptedSender) SyncCoins(_ context.Context, key string, body mainsite.SyncCoinsRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, key)
	s.bodies = append(s.bodies, body)
	if s.failures > 0 {
		s.failures--
		return errors.New("main site returned 500")
	}
	return nil
}

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func request(key string) models.SyncRequest {
	return models.SyncRequest{IdempotencyKey: key, UserID: "u1", Email: "u1@example.com", CoinAmount: 20, Reason: models.ReasonNoteApproved}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{4, 8 * time.Second},
		{10, time.Minute},
		{200, time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(time.Second, time.Minute, tt.attempts), "attempts=%d", tt.attempts)
	}
}

func TestDirectForwardSwallowsFailure(t *testing.T) {
	sender := &scriptedSender{failures: 1}
	f := NewForwarder(sender, nil, "moderation_service")

	f.Forward(context.Background(), request("tx-1"))

	require.Equal(t, 1, sender.callCount())
	assert.Equal(t, "moderation_service", sender.bodies[0].Source)
	assert.Equal(t, "tx-1", sender.calls[0])
}

func TestOutboxForwardRetriesUntilDelivered(t *testing.T) {
	clock := newFakeClock()
	sender := &scriptedSender{failures: 2}
	outbox := NewMemoryOutbox()

	f := NewForwarder(sender, outbox, "moderation_service")
	f.now = clock.now
	d := NewDispatcher(outbox, sender, DispatcherConfig{BaseBackoff: time.Second, MaxBackoff: time.Minute, MaxAttempts: 5})
	d.now = clock.now

	ctx := context.Background()
	f.Forward(ctx, request("tx-1"))
	assert.Equal(t, 0, sender.callCount(), "enqueue must not deliver inline")

	delivered, failed, err := d.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Equal(t, 1, failed)

	// not due yet
	delivered, failed, err = d.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, delivered+failed)

	clock.advance(time.Second)
	_, failed, err = d.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	clock.advance(2 * time.Second)
	delivered, _, err = d.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, []string{"tx-1", "tx-1", "tx-1"}, sender.calls)
}

func TestDispatcherParksAfterMaxAttempts(t *testing.T) {
	clock := newFakeClock()
	sender := &scriptedSender{failures: 100}
	outbox := NewMemoryOutbox()
	d := NewDispatcher(outbox, sender, DispatcherConfig{BaseBackoff: time.Second, MaxBackoff: time.Second, MaxAttempts: 3})
	d.now = clock.now

	ctx := context.Background()
	require.NoError(t, outbox.Enqueue(ctx, models.OutboxEntry{Request: request("tx-1"), NextAttemptAt: clock.now()}))

	for i := 0; i < 5; i++ {
		_, _, err := d.Flush(ctx)
		require.NoError(t, err)
		clock.advance(time.Second)
	}
	assert.Equal(t, 3, sender.callCount())

	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Parked)
	assert.Equal(t, 3, pending[0].Attempts)
	assert.NotEmpty(t, pending[0].LastError)

	sender.failures = 0
	n, err := d.Requeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	delivered, _, err := d.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestEnqueueIsIdempotent(t *testing.T) {
	outbox := NewMemoryOutbox()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, outbox.Enqueue(ctx, models.OutboxEntry{Request: request("tx-1"), NextAttemptAt: now}))
	require.NoError(t, outbox.Enqueue(ctx, models.OutboxEntry{Request: request("tx-1"), NextAttemptAt: now}))

	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	sender := &scriptedSender{}
	outbox := NewMemoryOutbox()
	d := NewDispatcher(outbox, sender, DispatcherConfig{PollInterval: time.Hour})
	f := NewForwarder(sender, outbox, "moderation_service").WithWake(d.Wake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	f.Forward(ctx, request("tx-1"))
	require.Eventually(t, func() bool { return sender.callCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestRedisOutboxContract(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	prefix := "moderation-test:" + uuid.NewString()
	defer rdb.Del(ctx, prefix+":entries", prefix+":due")

	outbox := NewRedisOutbox(rdb, prefix)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, outbox.Enqueue(ctx, models.OutboxEntry{Request: request("a"), NextAttemptAt: now, CreatedAt: now}))
	require.NoError(t, outbox.Enqueue(ctx, models.OutboxEntry{Request: request("b"), NextAttemptAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, outbox.Enqueue(ctx, models.OutboxEntry{Request: request("a"), NextAttemptAt: now, CreatedAt: now}))

	due, err := outbox.Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "a", due[0].ID())
	assert.Equal(t, "u1@example.com", due[0].Request.Email)

	entry := due[0]
	entry.Attempts = 1
	entry.Parked = true
	require.NoError(t, outbox.Reschedule(ctx, entry))

	due, err = outbox.Due(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "b", due[0].ID())

	require.NoError(t, outbox.MarkDelivered(ctx, "b"))
	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Parked)
}
