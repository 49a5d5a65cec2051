// Package repository provides data access layer implementations and interfaces for the document store
package repository

import (
	"context"
	"time"

	"github.com/ea-cloud/backend/models"
)

// AccountRepository defines data access operations for account documents
type AccountRepository interface {
	// ByKey retrieves the account identified by the (eaType, account) pair.
	// Returns nil without error when no document matches.
	ByKey(ctx context.Context, eaType, account string) (*models.Account, error)

	// ByFilter retrieves accounts based on filter criteria
	ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error)

	// Save inserts a new account document
	Save(ctx context.Context, account *models.Account) error

	// UpdateStatus sets status, enabled and updated_at on the account
	// identified by the key pair in a single write. Returns false when
	// no document matched.
	UpdateStatus(ctx context.Context, eaType, account, status string, enabled bool, updatedAt time.Time) (bool, error)

	// Delete removes the account identified by the key pair. Returns
	// false when no document matched.
	Delete(ctx context.Context, eaType, account string) (bool, error)

	// Count returns the number of accounts matching the filter
	Count(ctx context.Context, filter models.AccountFilter) (int64, error)

	// Exists checks if any account matching the filter exists
	Exists(ctx context.Context, filter models.AccountFilter) (bool, error)
}
