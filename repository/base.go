// Package repository provides data access layer implementations and interfaces for the document store
package repository

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseRepository provides common repository functionality on top of a Mongo collection
type BaseRepository struct {
	Collection *mongo.Collection
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository(collection *mongo.Collection) *BaseRepository {
	return &BaseRepository{
		Collection: collection,
	}
}

// findOptions builds Mongo find options from an "column DIR" order
// expression plus limit/offset, mirroring the query shape used across
// repositories.
func (r *BaseRepository) findOptions(orderBy string, limit, offset int) *options.FindOptions {
	opts := options.Find()

	if orderBy != "" {
		opts.SetSort(parseOrder(orderBy))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	return opts
}

// parseOrder converts "created_at DESC" style ordering into a sort document
func parseOrder(orderBy string) bson.D {
	parts := strings.Fields(orderBy)
	if len(parts) == 0 {
		return bson.D{}
	}

	direction := 1
	if len(parts) > 1 && strings.EqualFold(parts[1], "DESC") {
		direction = -1
	}

	return bson.D{{Key: parts[0], Value: direction}}
}

// count returns the number of documents matching the filter
func (r *BaseRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
