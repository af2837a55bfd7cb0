package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slog"
)

// maxRewardAttempts bounds the optimistic retry loop in ApplyReward.
const maxRewardAttempts = 5

var _ repositories.LedgerRepository = (*CoinTransactionRepository)(nil)

// CoinTransactionRepository writes rewards against the users and coin_transactions collections
type CoinTransactionRepository struct {
	users        *mongo.Collection
	transactions *mongo.Collection
}

// NewCoinTransactionRepository creates a new CoinTransactionRepository
func NewCoinTransactionRepository(db *mongo.Database) *CoinTransactionRepository {
	return &CoinTransactionRepository{
		users:        db.Collection("users"),
		transactions: db.Collection("coin_transactions"),
	}
}

// ApplyReward credits the user with a version-checked update and then records the transaction.
// A lost race is retried against a fresh read.
func (r *CoinTransactionRepository) ApplyReward(ctx context.Context, userID string, amount int64, details models.RewardDetails) (*models.User, *models.CoinTransaction, error) {
	for attempt := 0; attempt < maxRewardAttempts; attempt++ {
		var user models.User
		err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, repositories.ErrUserNotFound
		}
		if err != nil {
			return nil, nil, err
		}

		now := time.Now().UTC()
		res, err := r.users.UpdateOne(ctx,
			versionFilter(userID, user.Version),
			bson.M{
				"$inc": bson.M{"coins": amount, "totalCoinsEarned": amount, "version": 1},
				"$set": bson.M{"lastCoinReward": now, "updatedAt": now},
			})
		if err != nil {
			return nil, nil, err
		}
		if res.MatchedCount == 0 {
			slog.Debug("Reward lost optimistic race, retrying", "userId", userID, "attempt", attempt+1)
			continue
		}

		tx := &models.CoinTransaction{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			UserEmail:       user.Email,
			Amount:          amount,
			Type:            models.TransactionTypeReward,
			Reason:          details.Reason,
			NoteID:          details.NoteID,
			NoteTitle:       details.NoteTitle,
			ApprovedBy:      details.ApprovedBy,
			PreviousBalance: user.CoinBalance,
			NewBalance:      user.CoinBalance + amount,
			CreatedAt:       now,
		}
		if _, err := r.transactions.InsertOne(ctx, tx); err != nil {
			r.revert(ctx, userID, amount, user.Version+1)
			return nil, nil, fmt.Errorf("record coin transaction: %w", err)
		}

		user.CoinBalance = tx.NewBalance
		user.TotalCoinsEarned += amount
		user.LastCoinReward = now
		user.UpdatedAt = now
		user.Version++
		return &user, tx, nil
	}
	return nil, nil, repositories.ErrConcurrentUpdate
}

// versionFilter matches userID at version. Documents written without a version field count as version 0.
func versionFilter(userID string, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": userID, "$or": bson.A{
			bson.M{"version": int64(0)},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": userID, "version": version}
}

// revert undoes a credit whose transaction row could not be written.
func (r *CoinTransactionRepository) revert(ctx context.Context, userID string, amount, version int64) {
	res, err := r.users.UpdateOne(ctx,
		versionFilter(userID, version),
		bson.M{"$inc": bson.M{"coins": -amount, "totalCoinsEarned": -amount, "version": 1}})
	if err != nil {
		slog.Error("Failed to revert reward after ledger insert failure", "userId", userID, "amount", amount, "error", err)
		return
	}
	if res.MatchedCount == 0 {
		slog.Error("Ledger drift: reward credited without a transaction row, user changed before revert",
			"userId", userID, "amount", amount, "expectedVersion", version)
	}
}

// ListTransactions lists ledger rows, newest first
func (r *CoinTransactionRepository) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.transactions.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transactions []*models.CoinTransaction
	if err = cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*models.CoinTransaction{}
	}
	return transactions, nil
}
