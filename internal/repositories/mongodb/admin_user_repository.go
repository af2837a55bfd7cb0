package mongodb

import (
	"context"
	"errors"
	"strings"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Ensure AdminUserRepository implements repositories.AdminUserRepository
var _ repositories.AdminUserRepository = (*AdminUserRepository)(nil)

// AdminUserRepository reads moderator accounts from the admin_users collection
type AdminUserRepository struct {
	collection *mongo.Collection
}

// NewAdminUserRepository creates a new repository for admin users
func NewAdminUserRepository(db *mongo.Database) *AdminUserRepository {
	return &AdminUserRepository{
		collection: db.Collection("admin_users"),
	}
}

// FindByEmail finds an admin user by their email address
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var adminUser models.AdminUser
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&adminUser)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &adminUser, nil
}
