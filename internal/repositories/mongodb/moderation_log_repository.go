package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.ModerationLogRepository = (*ModerationLogRepository)(nil)

// ModerationLogRepository stores the admin audit trail in admin_logs
type ModerationLogRepository struct {
	collection *mongo.Collection
}

// NewModerationLogRepository creates a new ModerationLogRepository
func NewModerationLogRepository(db *mongo.Database) *ModerationLogRepository {
	return &ModerationLogRepository{
		collection: db.Collection("admin_logs"),
	}
}

// AppendModerationLog inserts an entry
func (r *ModerationLogRepository) AppendModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// ListModerationLogs returns the latest entries first
func (r *ModerationLogRepository) ListModerationLogs(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*models.ModerationLogEntry
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*models.ModerationLogEntry{}
	}
	return logs, nil
}
