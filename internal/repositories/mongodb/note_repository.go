package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NoteRepository handles MongoDB operations for Note
type NoteRepository struct {
	collection *mongo.Collection
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{
		collection: db.Collection("notes"),
	}
}

// FindNote finds a note by ID
func (r *NoteRepository) FindNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotesForModeration lists notes matching the filter, newest first
func (r *NoteRepository) ListNotesForModeration(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*models.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	return notes, nil
}

// TransitionNote updates the note only while it is still in the from status.
func (r *NoteRepository) TransitionNote(ctx context.Context, id string, from, to models.NoteStatus, review models.NoteReview) (*models.Note, error) {
	if review.At.IsZero() {
		review.At = time.Now().UTC()
	}

	set := bson.M{"status": to, "updatedAt": review.At}
	update := bson.M{"$set": set}
	switch to {
	case models.NoteStatusApproved:
		set["approvedBy"] = review.ReviewerID
		set["approvedAt"] = review.At
		set["coinReward"] = review.CoinReward
	case models.NoteStatusRejected:
		set["rejectedBy"] = review.ReviewerID
		set["rejectedAt"] = review.At
		set["rejectionReason"] = review.Reason
	case models.NoteStatusPending:
		update["$unset"] = bson.M{"approvedBy": "", "approvedAt": "", "coinReward": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note models.Note
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, countErr
		}
		if n == 0 {
			return nil, repositories.ErrNoteNotFound
		}
		return nil, repositories.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Counts returns the total and pending note counts and the sum of downloads.
func (r *NoteRepository) Counts(ctx context.Context) (total, pending, downloads int64, err error) {
	if total, err = r.collection.CountDocuments(ctx, bson.M{}); err != nil {
		return 0, 0, 0, err
	}
	if pending, err = r.collection.CountDocuments(ctx, bson.M{"status": models.NoteStatusPending}); err != nil {
		return 0, 0, 0, err
	}

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "downloads", Value: bson.D{{Key: "$sum", Value: "$downloads"}}}}}},
	})
	if err != nil {
		return 0, 0, 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Downloads int64 `bson:"downloads"`
	}
	if err = cursor.All(ctx, &result); err != nil {
		return 0, 0, 0, err
	}
	if len(result) > 0 {
		downloads = result[0].Downloads
	}
	return total, pending, downloads, nil
}
