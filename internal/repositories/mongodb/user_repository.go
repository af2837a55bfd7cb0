package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// FindUserByID finds a user by ID
func (r *UserRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindUserByEmail finds a user by email
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates the user on first reference or refreshes its profile fields.
// Coin fields are only set on insert.
func (r *UserRepository) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	update := bson.M{
		"$set": bson.M{
			"name":      user.Name,
			"role":      user.Role,
			"isActive":  user.IsActive,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":              id,
			"coins":            user.CoinBalance,
			"totalCoinsEarned": user.TotalCoinsEarned,
			"version":          int64(0),
			"createdAt":        now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": user.Email}, update, opts).Decode(&saved); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repositories.ErrUserIDConflict
		}
		return nil, err
	}
	return &saved, nil
}

// ListUsers retrieves all users, newest first
func (r *UserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
