package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ea-cloud/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccountRepositoryImpl implements AccountRepository on a Mongo collection
type AccountRepositoryImpl struct {
	*BaseRepository
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *mongo.Database) AccountRepository {
	collection := db.Collection(models.Account{}.CollectionName())
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository(collection),
	}
}

// EnsureAccountIndexes creates the unique (ea_type, account) key index.
// Safe to call on every boot; index creation is idempotent.
func EnsureAccountIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(models.Account{}.CollectionName())
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ea_type", Value: 1}, {Key: "account", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uk_accounts_ea_type_account"),
		},
		{
			Keys:    bson.D{{Key: "ea_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_accounts_ea_type_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}
	return nil
}

// ByKey retrieves an account by its (ea_type, account) pair
func (r *AccountRepositoryImpl) ByKey(ctx context.Context, eaType, account string) (*models.Account, error) {
	var acc models.Account
	err := r.Collection.FindOne(ctx, bson.M{"ea_type": eaType, "account": account}).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account %s/%s: %w", eaType, account, err)
	}

	return &acc, nil
}

// applyFilter converts filter criteria into a Mongo filter document
func (r *AccountRepositoryImpl) applyFilter(filter models.AccountFilter) bson.M {
	query := bson.M{}
	if filter.UUID != nil {
		query["uuid"] = *filter.UUID
	}
	if filter.EAType != nil {
		query["ea_type"] = *filter.EAType
	}
	if filter.Account != nil {
		query["account"] = *filter.Account
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Enabled != nil {
		query["enabled"] = *filter.Enabled
	}
	if filter.CreatedAfter != nil {
		query["created_at"] = bson.M{"$gt": *filter.CreatedAfter}
	}
	if filter.CreatedBefore != nil {
		query["created_at"] = bson.M{"$lt": *filter.CreatedBefore}
	}
	return query
}

// ByFilter retrieves accounts based on filter criteria
func (r *AccountRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	// Default to newest first
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	cursor, err := r.Collection.Find(ctx, r.applyFilter(filter), r.findOptions(orderBy, limit, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by filter: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]*models.Account, 0)
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	return accounts, nil
}

// Save inserts a new account document
func (r *AccountRepositoryImpl) Save(ctx context.Context, account *models.Account) error {
	if _, err := r.Collection.InsertOne(ctx, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

// UpdateStatus sets status, enabled and updated_at in a single write.
// Existence is decided by the update's matched count rather than a
// separate read.
func (r *AccountRepositoryImpl) UpdateStatus(ctx context.Context, eaType, account, status string, enabled bool, updatedAt time.Time) (bool, error) {
	result, err := r.Collection.UpdateOne(ctx,
		bson.M{"ea_type": eaType, "account": account},
		bson.M{"$set": bson.M{
			"status":     status,
			"enabled":    enabled,
			"updated_at": updatedAt,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update account status %s/%s: %w", eaType, account, err)
	}

	return result.MatchedCount > 0, nil
}

// Delete removes the account identified by the key pair
func (r *AccountRepositoryImpl) Delete(ctx context.Context, eaType, account string) (bool, error) {
	result, err := r.Collection.DeleteOne(ctx, bson.M{"ea_type": eaType, "account": account})
	if err != nil {
		return false, fmt.Errorf("failed to delete account %s/%s: %w", eaType, account, err)
	}

	return result.DeletedCount > 0, nil
}

// Count returns the number of accounts matching the filter
func (r *AccountRepositoryImpl) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	return r.count(ctx, r.applyFilter(filter))
}

// Exists checks if any account matching the filter exists
func (r *AccountRepositoryImpl) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsDuplicateKey reports whether err is a unique index violation,
// used by callers that race concurrent registrations on the same key.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
