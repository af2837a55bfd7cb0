package coinsync

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
)

// OutboxStore keeps sync requests until they are delivered.
// Entries are identified by their idempotency key; enqueueing a known key is a no-op.
type OutboxStore interface {
	Enqueue(ctx context.Context, entry models.OutboxEntry) error
	// Due returns up to limit unparked entries whose NextAttemptAt is not after now, oldest first.
	Due(ctx context.Context, now time.Time, limit int) ([]models.OutboxEntry, error)
	MarkDelivered(ctx context.Context, id string) error
	// Reschedule stores the entry's attempt bookkeeping. Parked entries are never due again.
	Reschedule(ctx context.Context, entry models.OutboxEntry) error
	// Pending returns every undelivered entry, parked ones included.
	Pending(ctx context.Context) ([]models.OutboxEntry, error)
}

var _ OutboxStore = (*MemoryOutbox)(nil)

// MemoryOutbox is a process-local OutboxStore.
type MemoryOutbox struct {
	mu      sync.Mutex
	entries map[string]models.OutboxEntry
}

// NewMemoryOutbox creates an empty MemoryOutbox.
func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{entries: make(map[string]models.OutboxEntry)}
}

func (o *MemoryOutbox) Enqueue(_ context.Context, entry models.OutboxEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[entry.ID()]; ok {
		return nil
	}
	o.entries[entry.ID()] = entry
	return nil
}

func (o *MemoryOutbox) Due(_ context.Context, now time.Time, limit int) ([]models.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var due []models.OutboxEntry
	for _, e := range o.entries {
		if !e.Parked && !e.NextAttemptAt.After(now) {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (o *MemoryOutbox) MarkDelivered(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.entries, id)
	return nil
}

func (o *MemoryOutbox) Reschedule(_ context.Context, entry models.OutboxEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[entry.ID()]; !ok {
		return nil
	}
	o.entries[entry.ID()] = entry
	return nil
}

func (o *MemoryOutbox) Pending(_ context.Context) ([]models.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending := make([]models.OutboxEntry, 0, len(o.entries))
	for _, e := range o.entries {
		pending = append(pending, e)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}
