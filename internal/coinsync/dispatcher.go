package coinsync

import (
	"context"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/metrics"
	"golang.org/x/exp/slog"
)

// DispatcherConfig tunes outbox delivery.
type DispatcherConfig struct {
	PollInterval time.Duration
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	MaxAttempts  int
	BatchSize    int
}

// Dispatcher drains an OutboxStore into a Sender.
type Dispatcher struct {
	store  OutboxStore
	sender Sender
	cfg    DispatcherConfig
	wake   chan struct{}
	now    func() time.Time
}

// NewDispatcher creates a Dispatcher, filling unset config with defaults.
func NewDispatcher(store OutboxStore, sender Sender, cfg DispatcherConfig) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Dispatcher{
		store:  store,
		sender: sender,
		cfg:    cfg,
		wake:   make(chan struct{}, 1),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Backoff returns base*2^(attempts-1), capped at ceiling.
func Backoff(base, ceiling time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= ceiling || d <= 0 {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

// Wake asks a running dispatcher to flush without waiting for the next tick.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run flushes the outbox every poll interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("Coin sync dispatcher started", "pollInterval", d.cfg.PollInterval, "maxAttempts", d.cfg.MaxAttempts)
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Coin sync dispatcher stopped")
			return
		case <-ticker.C:
		case <-d.wake:
		}
		if _, _, err := d.Flush(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Coin sync flush failed", "error", err)
		}
	}
}

// Flush attempts every due entry once and reports how many were delivered and how many failed.
func (d *Dispatcher) Flush(ctx context.Context) (delivered, failed int, err error) {
	due, err := d.store.Due(ctx, d.now(), d.cfg.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range due {
		if ctx.Err() != nil {
			return delivered, failed, ctx.Err()
		}

		sendErr := send(ctx, d.sender, entry.Request)
		if sendErr == nil {
			if err := d.store.MarkDelivered(ctx, entry.ID()); err != nil {
				return delivered, failed, err
			}
			delivered++
			metrics.SyncAttempts.WithLabelValues("delivered").Inc()
			slog.Info("Coins synced to main site", "userId", entry.Request.UserID,
				"amount", entry.Request.CoinAmount, "attempts", entry.Attempts+1)
			continue
		}

		failed++
		entry.Attempts++
		entry.LastError = sendErr.Error()
		if entry.Attempts >= d.cfg.MaxAttempts {
			entry.Parked = true
			metrics.SyncAttempts.WithLabelValues("parked").Inc()
			slog.Error("Coin sync gave up, balances have drifted", "userId", entry.Request.UserID,
				"amount", entry.Request.CoinAmount, "key", entry.ID(), "attempts", entry.Attempts, "error", sendErr)
		} else {
			entry.NextAttemptAt = d.now().Add(Backoff(d.cfg.BaseBackoff, d.cfg.MaxBackoff, entry.Attempts))
			metrics.SyncAttempts.WithLabelValues("failed").Inc()
			slog.Warn("Coin sync failed, will retry", "userId", entry.Request.UserID,
				"attempts", entry.Attempts, "nextAttemptAt", entry.NextAttemptAt, "error", sendErr)
		}
		if err := d.store.Reschedule(ctx, entry); err != nil {
			return delivered, failed, err
		}
	}

	if pending, err := d.store.Pending(ctx); err == nil {
		metrics.OutboxDepth.Set(float64(len(pending)))
	}
	return delivered, failed, nil
}

// Requeue makes every parked entry due again with a fresh attempt budget.
func (d *Dispatcher) Requeue(ctx context.Context) (int, error) {
	pending, err := d.store.Pending(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range pending {
		if !e.Parked {
			continue
		}
		e.Parked = false
		e.Attempts = 0
		e.NextAttemptAt = d.now()
		if err := d.store.Reschedule(ctx, e); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
