// Package testing provides test utilities and in-memory storage for testing the account lifecycle
package testing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ea-cloud/backend/models"
	"github.com/ea-cloud/backend/repository"
	"github.com/google/uuid"
)

// MemoryAccountRepository is an in-memory AccountRepository used to
// exercise flows and handlers without a running document store. All
// operations are safe for concurrent use.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

// NewMemoryAccountRepository creates an empty in-memory repository
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[string]*models.Account),
	}
}

var _ repository.AccountRepository = (*MemoryAccountRepository)(nil)

func key(eaType, account string) string {
	return eaType + "\x00" + account
}

// ByKey retrieves the account identified by the (eaType, account) pair
func (r *MemoryAccountRepository) ByKey(ctx context.Context, eaType, account string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[key(eaType, account)]
	if !ok {
		return nil, nil
	}
	clone := *acc
	return &clone, nil
}

// ByFilter retrieves accounts matching the filter criteria
func (r *MemoryAccountRepository) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Account
	for _, acc := range r.accounts {
		if matchesFilter(acc, filter) {
			clone := *acc
			result = append(result, &clone)
		}
	}

	// Newest first is the only ordering the flows request
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}

	return result, nil
}

// Save inserts a new account, failing on a duplicate key pair
func (r *MemoryAccountRepository) Save(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(account.EAType, account.Account)
	if _, exists := r.accounts[k]; exists {
		return fmt.Errorf("duplicate key: %s/%s", account.EAType, account.Account)
	}

	clone := *account
	r.accounts[k] = &clone
	return nil
}

// UpdateStatus sets status, enabled and updated_at on the keyed account
func (r *MemoryAccountRepository) UpdateStatus(ctx context.Context, eaType, account, status string, enabled bool, updatedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[key(eaType, account)]
	if !ok {
		return false, nil
	}

	acc.Status = status
	acc.Enabled = enabled
	acc.UpdatedAt = updatedAt
	return true, nil
}

// Delete removes the keyed account
func (r *MemoryAccountRepository) Delete(ctx context.Context, eaType, account string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(eaType, account)
	if _, ok := r.accounts[k]; !ok {
		return false, nil
	}
	delete(r.accounts, k)
	return true, nil
}

// Count returns the number of accounts matching the filter
func (r *MemoryAccountRepository) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, acc := range r.accounts {
		if matchesFilter(acc, filter) {
			count++
		}
	}
	return count, nil
}

// Exists checks if any account matching the filter exists
func (r *MemoryAccountRepository) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func matchesFilter(acc *models.Account, filter models.AccountFilter) bool {
	if filter.UUID != nil && acc.UUID != *filter.UUID {
		return false
	}
	if filter.EAType != nil && acc.EAType != *filter.EAType {
		return false
	}
	if filter.Account != nil && acc.Account != *filter.Account {
		return false
	}
	if filter.Status != nil && acc.Status != *filter.Status {
		return false
	}
	if filter.Enabled != nil && acc.Enabled != *filter.Enabled {
		return false
	}
	if filter.CreatedAfter != nil && !acc.CreatedAt.After(*filter.CreatedAfter) {
		return false
	}
	if filter.CreatedBefore != nil && !acc.CreatedAt.Before(*filter.CreatedBefore) {
		return false
	}
	return true
}

// NewAccountFixture builds a pending account record with sensible defaults
func NewAccountFixture(eaType, account string, createdAt time.Time) *models.Account {
	return &models.Account{
		UUID:      uuid.New(),
		EAType:    eaType,
		Account:   account,
		Broker:    "TestBroker",
		Name:      "Test Trader",
		Phone:     "+66812345678",
		Reason:    models.DefaultReason,
		Status:    models.AccountStatusPending,
		Enabled:   false,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
