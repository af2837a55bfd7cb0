// Package coinsync mirrors ledger mutations onto the main site.
//
// Delivery is at-least-once: requests carry the transaction id as an idempotency key,
// are kept in an outbox until the main site acknowledges them, and are retried with
// exponential backoff by a Dispatcher. Failures never reach the caller of Forward.
package coinsync

import (
	"context"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/metrics"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/pkg/mainsite"
	"golang.org/x/exp/slog"
)

// Sender performs a single delivery attempt.
type Sender interface {
	SyncCoins(ctx context.Context, idempotencyKey string, body mainsite.SyncCoinsRequest) error
}

// Forwarder hands coin mutations to the main site, either through an outbox or directly.
type Forwarder struct {
	sender Sender
	outbox OutboxStore
	source string
	wake   func()
	now    func() time.Time
}

// NewForwarder creates a Forwarder. A nil outbox selects direct, fire-and-forget delivery.
func NewForwarder(sender Sender, outbox OutboxStore, source string) *Forwarder {
	return &Forwarder{
		sender: sender,
		outbox: outbox,
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithWake registers a callback run after each enqueue, typically Dispatcher.Wake.
func (f *Forwarder) WithWake(wake func()) *Forwarder {
	f.wake = wake
	return f
}

// Forward schedules or performs delivery of req. It never fails.
func (f *Forwarder) Forward(ctx context.Context, req models.SyncRequest) {
	if req.Source == "" {
		req.Source = f.source
	}

	if f.outbox != nil {
		now := f.now()
		err := f.outbox.Enqueue(ctx, models.OutboxEntry{Request: req, NextAttemptAt: now, CreatedAt: now})
		if err == nil {
			metrics.SyncAttempts.WithLabelValues("enqueued").Inc()
			slog.Debug("Coin sync queued", "userId", req.UserID, "amount", req.CoinAmount, "key", req.IdempotencyKey)
			if f.wake != nil {
				f.wake()
			}
			return
		}
		slog.Error("Failed to queue coin sync, attempting direct delivery", "userId", req.UserID, "error", err)
	}

	f.Deliver(ctx, req)
}

// Deliver makes exactly one attempt and logs the outcome.
func (f *Forwarder) Deliver(ctx context.Context, req models.SyncRequest) bool {
	if err := send(ctx, f.sender, req); err != nil {
		metrics.SyncAttempts.WithLabelValues("failed").Inc()
		slog.Warn("Coin sync to main site failed", "userId", req.UserID, "email", req.Email,
			"amount", req.CoinAmount, "error", err)
		return false
	}
	metrics.SyncAttempts.WithLabelValues("delivered").Inc()
	slog.Info("Coins synced to main site", "userId", req.UserID, "email", req.Email, "amount", req.CoinAmount)
	return true
}

func send(ctx context.Context, sender Sender, req models.SyncRequest) error {
	return sender.SyncCoins(ctx, req.IdempotencyKey, mainsite.SyncCoinsRequest{
		UserID:     req.UserID,
		CoinAmount: req.CoinAmount,
		Reason:     req.Reason,
		Source:     req.Source,
	})
}
