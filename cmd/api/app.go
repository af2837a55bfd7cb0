package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/coinsync"
	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/masterstudent-moderation/internal/repositories/mongodb"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories/remote"
	"github.com/ArowuTest/masterstudent-moderation/pkg/mainsite"
	mongodb "github.com/ArowuTest/masterstudent-moderation/pkg/mongodb"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

// storage is the result of binding the configured primary and the local fallback.
type storage struct {
	selector *repositories.Selector
	binding  *repositories.Binding
	admins   repositories.AdminUserRepository
	close    func(context.Context)
}

// openStorage builds the primary provider, probes it and binds the winner.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	fallback := memory.NewStore()
	if cfg.Admin.PasswordHash != "" {
		fallback.PutAdmin(&models.AdminUser{
			ID:        "1",
			Name:      cfg.Admin.Name,
			Email:     cfg.Admin.Email,
			Password:  cfg.Admin.PasswordHash,
			Role:      models.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		})
	}

	st := &storage{admins: fallback, close: func(context.Context) {}}

	var primary repositories.Provider
	switch cfg.Storage.Primary {
	case config.PrimaryRemote:
		primary = remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Remote.Timeout)
	case config.PrimaryMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.Storage.ProbeTimeout)
		if err != nil {
			slog.Warn("MongoDB unreachable, primary unavailable", "uri", cfg.MongoDB.URI, "error", err)
			break
		}
		db := client.Database(cfg.MongoDB.Database)
		primary = mongorepo.NewProvider(
			mongorepo.NewUserRepository(db),
			mongorepo.NewNoteRepository(db),
			mongorepo.NewCoinTransactionRepository(db),
			mongorepo.NewModerationLogRepository(db),
		)
		st.admins = repositories.AdminChain{mongorepo.NewAdminUserRepository(db), fallback}
		st.close = func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				slog.Error("Error disconnecting from MongoDB", "error", err)
			}
		}
	default:
		return nil, fmt.Errorf("unknown storage primary %q", cfg.Storage.Primary)
	}

	st.selector = repositories.NewSelector(primary, fallback, cfg.Storage.ProbeTimeout)
	st.binding = st.selector.Select(ctx)
	return st, nil
}

// outbox is the sync outbox plus its teardown.
type outbox struct {
	store coinsync.OutboxStore
	close func()
}

// openOutbox returns nil store in direct mode. An unreachable Redis degrades to memory.
func openOutbox(ctx context.Context, cfg *config.Config) *outbox {
	if cfg.Sync.Mode == config.SyncModeDirect {
		return &outbox{close: func() {}}
	}
	if cfg.Sync.Outbox == config.OutboxRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.ProbeTimeout)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			slog.Info("Using Redis sync outbox", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key)
			return &outbox{
				store: coinsync.NewRedisOutbox(rdb, cfg.Redis.Key),
				close: func() { _ = rdb.Close() },
			}
		}
		slog.Error("Redis unreachable, sync outbox falls back to memory", "addr", cfg.Redis.Addr, "error", err)
		_ = rdb.Close()
	}
	return &outbox{store: coinsync.NewMemoryOutbox(), close: func() {}}
}

func newSender(cfg *config.Config) *mainsite.Client {
	return mainsite.NewClient(cfg.Sync.URL, cfg.Sync.AdminKey, cfg.Sync.Timeout)
}

func newDispatcher(cfg *config.Config, store coinsync.OutboxStore, sender coinsync.Sender) *coinsync.Dispatcher {
	return coinsync.NewDispatcher(store, sender, coinsync.DispatcherConfig{
		PollInterval: cfg.Sync.PollInterval,
		BaseBackoff:  cfg.Sync.BaseBackoff,
		MaxBackoff:   cfg.Sync.MaxBackoff,
		MaxAttempts:  cfg.Sync.MaxAttempts,
		BatchSize:    cfg.Sync.BatchSize,
	})
}
