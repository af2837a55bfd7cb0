package coinsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/redis/go-redis/v9"
)

var _ OutboxStore = (*RedisOutbox)(nil)

// RedisOutbox is a durable OutboxStore. Entries live in a hash keyed by id and
// unparked ids are indexed in a sorted set scored by next attempt time (unix ms).
type RedisOutbox struct {
	rdb        *redis.Client
	entriesKey string
	dueKey     string
}

// NewRedisOutbox creates a RedisOutbox under the key prefix.
func NewRedisOutbox(rdb *redis.Client, prefix string) *RedisOutbox {
	return &RedisOutbox{
		rdb:        rdb,
		entriesKey: prefix + ":entries",
		dueKey:     prefix + ":due",
	}
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (o *RedisOutbox) Enqueue(ctx context.Context, entry models.OutboxEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox entry: %w", err)
	}
	added, err := o.rdb.HSetNX(ctx, o.entriesKey, entry.ID(), data).Result()
	if err != nil {
		return err
	}
	if !added {
		return nil
	}
	return o.rdb.ZAdd(ctx, o.dueKey, redis.Z{Score: score(entry.NextAttemptAt), Member: entry.ID()}).Err()
}

func (o *RedisOutbox) Due(ctx context.Context, now time.Time, limit int) ([]models.OutboxEntry, error) {
	var count int64 = -1
	if limit > 0 {
		count = int64(limit)
	}
	ids, err := o.rdb.ZRangeByScore(ctx, o.dueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: count,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return o.load(ctx, ids)
}

func (o *RedisOutbox) load(ctx context.Context, ids []string) ([]models.OutboxEntry, error) {
	values, err := o.rdb.HMGet(ctx, o.entriesKey, ids...).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]models.OutboxEntry, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e models.OutboxEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to parse outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (o *RedisOutbox) MarkDelivered(ctx context.Context, id string) error {
	_, err := o.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, o.dueKey, id)
		pipe.HDel(ctx, o.entriesKey, id)
		return nil
	})
	return err
}

func (o *RedisOutbox) Reschedule(ctx context.Context, entry models.OutboxEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox entry: %w", err)
	}
	_, err = o.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, o.entriesKey, entry.ID(), data)
		if entry.Parked {
			pipe.ZRem(ctx, o.dueKey, entry.ID())
		} else {
			pipe.ZAdd(ctx, o.dueKey, redis.Z{Score: score(entry.NextAttemptAt), Member: entry.ID()})
		}
		return nil
	})
	return err
}

func (o *RedisOutbox) Pending(ctx context.Context) ([]models.OutboxEntry, error) {
	all, err := o.rdb.HGetAll(ctx, o.entriesKey).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]models.OutboxEntry, 0, len(all))
	for _, s := range all {
		var e models.OutboxEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to parse outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return entries, nil
}
