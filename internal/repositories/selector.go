package repositories

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/metrics"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"golang.org/x/exp/slog"
)

// DefaultProbeTimeout bounds the startup probe against the primary provider.
const DefaultProbeTimeout = 3 * time.Second

// Selector decides between the primary system-of-record and the local fallback.
type Selector struct {
	primary      Provider
	fallback     Provider
	probeTimeout time.Duration
}

// NewSelector creates a Selector. primary may be nil, in which case the fallback is always chosen.
func NewSelector(primary, fallback Provider, probeTimeout time.Duration) *Selector {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &Selector{
		primary:      primary,
		fallback:     fallback,
		probeTimeout: probeTimeout,
	}
}

// Select probes the primary once and binds whichever provider should serve requests.
// It never fails: an unreachable primary yields a binding to the fallback.
func (s *Selector) Select(ctx context.Context) *Binding {
	b := &Binding{}
	if s.probe(ctx) {
		b.set(s.primary)
		slog.Info("Storage provider selected", "kind", s.primary.Kind())
	} else {
		b.set(s.fallback)
		slog.Warn("Primary storage unreachable, using local fallback", "kind", s.fallback.Kind())
	}
	return b
}

// Watch re-probes the primary every interval while b is bound to the fallback and
// upgrades the binding once the primary answers. It returns when ctx is cancelled
// or the binding has been upgraded.
func (s *Selector) Watch(ctx context.Context, b *Binding, interval time.Duration) {
	if interval <= 0 || s.primary == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if b.Current() == s.primary {
				return
			}
			if !s.probe(ctx) {
				slog.Debug("Primary storage still unreachable", "kind", s.primary.Kind())
				continue
			}
			b.set(s.primary)
			slog.Warn("Primary storage reachable again, switching provider; changes made on the local fallback are not migrated",
				"from", s.fallback.Kind(), "to", s.primary.Kind())
			return
		}
	}
}

func (s *Selector) probe(ctx context.Context) bool {
	if s.primary == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	stats, err := s.primary.GetAggregateStats(probeCtx)
	if err != nil {
		slog.Warn("Storage probe failed", "kind", s.primary.Kind(), "error", err)
		return false
	}
	return stats != nil
}

type boundProvider struct {
	Provider
}

// Binding is the provider chosen by a Selector. It implements Provider by delegating
// to whichever provider is currently bound, so consumers never see a switch.
type Binding struct {
	current atomic.Pointer[boundProvider]
}

// NewBinding binds p directly, bypassing the probe.
func NewBinding(p Provider) *Binding {
	b := &Binding{}
	b.set(p)
	return b
}

func (b *Binding) set(p Provider) {
	b.current.Store(&boundProvider{Provider: p})
	metrics.SetStorageProvider(p.Kind(), KindRemote, KindMongoDB, KindLocal)
}

// Current returns the bound provider.
func (b *Binding) Current() Provider {
	return b.current.Load().Provider
}

var _ Provider = (*Binding)(nil)

func (b *Binding) Kind() string { return b.Current().Kind() }

func (b *Binding) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return b.Current().FindUserByID(ctx, id)
}

func (b *Binding) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return b.Current().FindUserByEmail(ctx, email)
}

func (b *Binding) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	return b.Current().UpsertUser(ctx, user)
}

func (b *Binding) ListUsers(ctx context.Context) ([]*models.User, error) {
	return b.Current().ListUsers(ctx)
}

func (b *Binding) FindNote(ctx context.Context, id string) (*models.Note, error) {
	return b.Current().FindNote(ctx, id)
}

func (b *Binding) ListNotesForModeration(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	return b.Current().ListNotesForModeration(ctx, filter)
}

func (b *Binding) TransitionNote(ctx context.Context, id string, from, to models.NoteStatus, review models.NoteReview) (*models.Note, error) {
	return b.Current().TransitionNote(ctx, id, from, to, review)
}

func (b *Binding) ApplyReward(ctx context.Context, userID string, amount int64, details models.RewardDetails) (*models.User, *models.CoinTransaction, error) {
	return b.Current().ApplyReward(ctx, userID, amount, details)
}

func (b *Binding) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error) {
	return b.Current().ListTransactions(ctx, filter)
}

func (b *Binding) GetAggregateStats(ctx context.Context) (*models.AggregateStats, error) {
	return b.Current().GetAggregateStats(ctx)
}

func (b *Binding) GetRecentActivity(ctx context.Context, limit int) ([]*models.Activity, error) {
	return b.Current().GetRecentActivity(ctx, limit)
}

func (b *Binding) AppendModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error {
	return b.Current().AppendModerationLog(ctx, entry)
}

func (b *Binding) ListModerationLogs(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	return b.Current().ListModerationLogs(ctx, limit)
}
