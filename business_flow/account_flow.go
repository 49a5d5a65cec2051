// Package businessflow contains the core business logic and use cases for account lifecycle workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ea-cloud/backend/app/dto"
	"github.com/ea-cloud/backend/app/services"
	"github.com/ea-cloud/backend/config"
	"github.com/ea-cloud/backend/models"
	"github.com/ea-cloud/backend/repository"
	"github.com/ea-cloud/backend/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AccountFlow handles the account lifecycle business logic
type AccountFlow interface {
	Register(ctx context.Context, req *dto.RegisterAccountRequest, metadata *ClientMetadata) (*dto.RegisterAccountResponse, error)
	ListByType(ctx context.Context, eaType string, metadata *ClientMetadata) (*dto.ListAccountsResponse, error)
	GetStatus(ctx context.Context, eaType, account string, metadata *ClientMetadata) (*dto.AccountStatusResponse, error)
	UpdateStatus(ctx context.Context, eaType, account string, req *dto.UpdateAccountStatusRequest, metadata *ClientMetadata) (*dto.UpdateAccountStatusResponse, error)
	DeleteAccount(ctx context.Context, eaType, account string, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error)
}

// AccountFlowImpl implements the account lifecycle flow
type AccountFlowImpl struct {
	accountRepo     repository.AccountRepository
	notificationSvc services.NotificationService
	cacheConfig     *config.CacheConfig
	rc              *redis.Client
}

// NewAccountFlow creates a new account flow instance
func NewAccountFlow(
	accountRepo repository.AccountRepository,
	notificationSvc services.NotificationService,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
) AccountFlow {
	return &AccountFlowImpl{
		accountRepo:     accountRepo,
		notificationSvc: notificationSvc,
		cacheConfig:     cacheConfig,
		rc:              rc,
	}
}

// Register validates a registration request and creates the account in
// pending/disabled state. Registering an already-known (ea_type,
// account) pair returns the existing record instead of failing.
func (f *AccountFlowImpl) Register(ctx context.Context, req *dto.RegisterAccountRequest, metadata *ClientMetadata) (*dto.RegisterAccountResponse, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	account := req.Account.String()

	existing, err := f.accountRepo.ByKey(ctx, req.EAType, account)
	if err != nil {
		return nil, NewBusinessError("REGISTER_LOOKUP_FAILED", "Failed to check existing registration", err)
	}
	if existing != nil {
		return alreadyRegisteredResponse(existing), nil
	}

	reason := models.DefaultReason
	if req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
		reason = *req.Reason
	}

	now := utils.UTCNow()
	newAccount := &models.Account{
		UUID:      uuid.New(),
		EAType:    req.EAType,
		Account:   account,
		Broker:    req.Broker,
		Name:      req.Name,
		Phone:     req.Phone,
		Reason:    reason,
		Status:    models.AccountStatusPending,
		Enabled:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := f.accountRepo.Save(ctx, newAccount); err != nil {
		// A concurrent registration on the same key hits the unique
		// index; resolve it the same way as the read-path conflict.
		if repository.IsDuplicateKey(err) {
			existing, lookupErr := f.accountRepo.ByKey(ctx, req.EAType, account)
			if lookupErr == nil && existing != nil {
				return alreadyRegisteredResponse(existing), nil
			}
		}
		return nil, NewBusinessError("REGISTER_FAILED", "Failed to register account", err)
	}

	// Notification is advisory; the created record is never rolled back
	f.notifyPermission(ctx, buildNewRequestMessage(newAccount))

	return &dto.RegisterAccountResponse{
		Message: "Registration successful",
		Account: newAccount.Account,
		Status:  newAccount.Status,
	}, nil
}

// ListByType returns all accounts registered under an EA type, newest first
func (f *AccountFlowImpl) ListByType(ctx context.Context, eaType string, metadata *ClientMetadata) (*dto.ListAccountsResponse, error) {
	filter := models.AccountFilter{EAType: &eaType}

	rows, err := f.accountRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_ACCOUNTS_FAILED", "Failed to list accounts", err)
	}

	accounts := make([]dto.AccountDTO, 0, len(rows))
	for _, r := range rows {
		accounts = append(accounts, ToAccountDTO(r))
	}

	return &dto.ListAccountsResponse{Accounts: accounts}, nil
}

// GetStatus returns the status projection of one account
func (f *AccountFlowImpl) GetStatus(ctx context.Context, eaType, account string, metadata *ClientMetadata) (*dto.AccountStatusResponse, error) {
	if cached := f.cachedStatus(ctx, eaType, account); cached != nil {
		return cached, nil
	}

	acc, err := f.accountRepo.ByKey(ctx, eaType, account)
	if err != nil {
		return nil, NewBusinessError("GET_STATUS_FAILED", "Failed to get account status", err)
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}

	resp := &dto.AccountStatusResponse{
		Account: acc.Account,
		Status:  acc.Status,
		Enabled: acc.Enabled,
		Broker:  acc.Broker,
		Name:    acc.Name,
	}

	f.cacheStatus(ctx, eaType, account, resp)

	return resp, nil
}

// UpdateStatus sets status and enabled in one write, then composes the
// transition notification from the committed record.
func (f *AccountFlowImpl) UpdateStatus(ctx context.Context, eaType, account string, req *dto.UpdateAccountStatusRequest, metadata *ClientMetadata) (*dto.UpdateAccountStatusResponse, error) {
	if !models.IsValidAccountStatus(req.Status) {
		return nil, ErrInvalidAccountStatus
	}

	enabled := utils.IsTrue(req.Enabled)

	matched, err := f.accountRepo.UpdateStatus(ctx, eaType, account, req.Status, enabled, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("UPDATE_STATUS_FAILED", "Failed to update account status", err)
	}
	if !matched {
		return nil, ErrAccountNotFound
	}

	f.invalidateStatus(ctx, eaType, account)

	// Re-read the committed record for the notification body. The
	// update is already durable; a failure past this point only costs
	// the notification.
	acc, err := f.accountRepo.ByKey(ctx, eaType, account)
	if err != nil {
		log.Printf("Status updated but re-read failed for %s/%s: %v", eaType, account, err)
	} else if acc != nil {
		if message := transitionMessage(acc); message != "" {
			f.notifyPermission(ctx, message)
		}
	}

	return &dto.UpdateAccountStatusResponse{
		Message: "Status updated",
		Status:  req.Status,
		Enabled: enabled,
	}, nil
}

// DeleteAccount removes an account. Deletion is silent: no notification.
func (f *AccountFlowImpl) DeleteAccount(ctx context.Context, eaType, account string, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error) {
	deleted, err := f.accountRepo.Delete(ctx, eaType, account)
	if err != nil {
		return nil, NewBusinessError("DELETE_ACCOUNT_FAILED", "Failed to delete account", err)
	}
	if !deleted {
		return nil, ErrAccountNotFound
	}

	f.invalidateStatus(ctx, eaType, account)

	return &dto.DeleteAccountResponse{Message: "Account deleted"}, nil
}

// Private helper methods

func validateRegisterRequest(req *dto.RegisterAccountRequest) error {
	if strings.TrimSpace(req.EAType) == "" {
		return ErrEATypeRequired
	}
	if strings.TrimSpace(req.Account.String()) == "" {
		return ErrAccountRequired
	}
	if strings.TrimSpace(req.Broker) == "" {
		return ErrBrokerRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(req.Phone) == "" {
		return ErrPhoneRequired
	}
	return nil
}

func alreadyRegisteredResponse(existing *models.Account) *dto.RegisterAccountResponse {
	return &dto.RegisterAccountResponse{
		Message:           "Account already registered",
		Account:           existing.Account,
		Status:            existing.Status,
		Enabled:           existing.Enabled,
		AlreadyRegistered: true,
	}
}

// notifyPermission sends to the permission channel, logging failures
// instead of propagating them.
func (f *AccountFlowImpl) notifyPermission(ctx context.Context, message string) {
	if err := f.notificationSvc.SendPermissionMessage(ctx, message); err != nil {
		log.Printf("Failed to send Telegram notification: %v", err)
	}
}

// transitionMessage selects the notification for a committed status
// transition. First match wins; approved-but-disabled intentionally
// falls through all three branches and stays silent.
func transitionMessage(acc *models.Account) string {
	switch {
	case acc.Status == models.AccountStatusApproved && acc.Enabled:
		return buildApprovedMessage(acc)
	case acc.Status == models.AccountStatusRejected:
		return buildRejectedMessage(acc)
	case !acc.Enabled:
		return buildDisabledMessage(acc)
	}
	return ""
}

func buildNewRequestMessage(acc *models.Account) string {
	return strings.TrimSpace(fmt.Sprintf(`
🆕 <b>New approval request</b>

<b>EA Type:</b> %s
<b>Account:</b> %s
<b>Broker:</b> %s
<b>Name:</b> %s
<b>Phone:</b> %s
<b>Reason:</b> %s

<i>Please review the request on the website</i>`,
		acc.EAType, acc.Account, acc.Broker, acc.Name, acc.Phone, acc.Reason))
}

func buildApprovedMessage(acc *models.Account) string {
	return strings.TrimSpace(fmt.Sprintf(`
✅ <b>Approved</b>

<b>Account:</b> %s
<b>Name:</b> %s
<b>Broker:</b> %s

<i>The EA is now ready to use</i>`,
		acc.Account, acc.Name, acc.Broker))
}

func buildRejectedMessage(acc *models.Account) string {
	return strings.TrimSpace(fmt.Sprintf(`
❌ <b>Request rejected</b>

<b>Account:</b> %s
<b>Name:</b> %s

<i>The request has been rejected</i>`,
		acc.Account, acc.Name))
}

func buildDisabledMessage(acc *models.Account) string {
	return strings.TrimSpace(fmt.Sprintf(`
🔴 <b>EA disabled</b>

<b>Account:</b> %s
<b>Name:</b> %s

<i>The EA has been disabled</i>`,
		acc.Account, acc.Name))
}

// Cache helpers; all cache failures degrade to store reads

func (f *AccountFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled
}

func (f *AccountFlowImpl) statusCacheKey(eaType, account string) string {
	return fmt.Sprintf("%sstatus:%s:%s", f.cacheConfig.RedisPrefix, eaType, account)
}

func (f *AccountFlowImpl) cachedStatus(ctx context.Context, eaType, account string) *dto.AccountStatusResponse {
	if !f.cacheEnabled() {
		return nil
	}

	raw, err := f.rc.Get(ctx, f.statusCacheKey(eaType, account)).Bytes()
	if err != nil {
		return nil
	}

	var resp dto.AccountStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (f *AccountFlowImpl) cacheStatus(ctx context.Context, eaType, account string, resp *dto.AccountStatusResponse) {
	if !f.cacheEnabled() {
		return
	}

	bytes, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := f.rc.Set(ctx, f.statusCacheKey(eaType, account), bytes, f.cacheConfig.DefaultTTL).Err(); err != nil {
		log.Printf("Failed to cache account status %s/%s: %v", eaType, account, err)
	}
}

func (f *AccountFlowImpl) invalidateStatus(ctx context.Context, eaType, account string) {
	if !f.cacheEnabled() {
		return
	}
	if err := f.rc.Del(ctx, f.statusCacheKey(eaType, account)).Err(); err != nil {
		log.Printf("Failed to invalidate account status cache %s/%s: %v", eaType, account, err)
	}
}

// ToAccountDTO converts an account model to its API representation
func ToAccountDTO(acc *models.Account) dto.AccountDTO {
	return dto.AccountDTO{
		UUID:      acc.UUID.String(),
		EAType:    acc.EAType,
		Account:   acc.Account,
		Broker:    acc.Broker,
		Name:      acc.Name,
		Phone:     acc.Phone,
		Reason:    acc.Reason,
		Status:    acc.Status,
		Enabled:   acc.Enabled,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}
