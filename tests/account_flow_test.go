package tests

import (
	"context"
	"testing"
	"time"

	"github.com/ea-cloud/backend/app/dto"
	"github.com/ea-cloud/backend/app/services"
	businessflow "github.com/ea-cloud/backend/business_flow"
	"github.com/ea-cloud/backend/config"
	"github.com/ea-cloud/backend/models"
	testingutil "github.com/ea-cloud/backend/testing"
	"github.com/ea-cloud/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlow() (businessflow.AccountFlow, *testingutil.MemoryAccountRepository, *services.MockNotificationService) {
	repo := testingutil.NewMemoryAccountRepository()
	notifications := services.NewMockNotificationService()
	flow := businessflow.NewAccountFlow(repo, notifications, &config.CacheConfig{Enabled: false}, nil)
	return flow, repo, notifications
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("203.0.113.10", "test-agent")
}

func registerRequest() *dto.RegisterAccountRequest {
	return &dto.RegisterAccountRequest{
		EAType:  "gold_scalper",
		Account: "12345",
		Broker:  "Exness",
		Name:    "Somchai",
		Phone:   "+66812345678",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessfulRegistration", func(t *testing.T) {
		flow, repo, notifications := newTestFlow()

		result, err := flow.Register(ctx, registerRequest(), testMetadata())
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.AlreadyRegistered)
		assert.Equal(t, "Registration successful", result.Message)
		assert.Equal(t, "12345", result.Account)
		assert.Equal(t, models.AccountStatusPending, result.Status)

		// Verify the stored record starts pending and disabled
		acc, err := repo.ByKey(ctx, "gold_scalper", "12345")
		require.NoError(t, err)
		require.NotNil(t, acc)
		assert.Equal(t, models.AccountStatusPending, acc.Status)
		assert.False(t, acc.Enabled)
		assert.Equal(t, models.DefaultReason, acc.Reason)
		assert.NotEmpty(t, acc.UUID)
		assert.False(t, acc.CreatedAt.IsZero())
		assert.Equal(t, acc.CreatedAt, acc.UpdatedAt)

		// Verify the approval request notification
		require.Len(t, notifications.SentMessages, 1)
		message := notifications.SentMessages[0]
		assert.Contains(t, message, "gold_scalper")
		assert.Contains(t, message, "12345")
		assert.Contains(t, message, "Exness")
		assert.Contains(t, message, "Somchai")
		assert.Contains(t, message, "+66812345678")
	})

	t.Run("RegistrationWithReason", func(t *testing.T) {
		flow, repo, _ := newTestFlow()

		req := registerRequest()
		req.Reason = utils.ToPtr("Live account for the gold strategy")

		_, err := flow.Register(ctx, req, testMetadata())
		require.NoError(t, err)

		acc, err := repo.ByKey(ctx, "gold_scalper", "12345")
		require.NoError(t, err)
		require.NotNil(t, acc)
		assert.Equal(t, "Live account for the gold strategy", acc.Reason)
	})

	t.Run("DuplicateRegistrationReturnsExistingState", func(t *testing.T) {
		flow, _, notifications := newTestFlow()

		_, err := flow.Register(ctx, registerRequest(), testMetadata())
		require.NoError(t, err)

		// Approve the first registration, then register the same key again
		enabled := true
		_, err = flow.UpdateStatus(ctx, "gold_scalper", "12345", &dto.UpdateAccountStatusRequest{
			Status:  models.AccountStatusApproved,
			Enabled: &enabled,
		}, testMetadata())
		require.NoError(t, err)

		sentBefore := len(notifications.SentMessages)

		result, err := flow.Register(ctx, registerRequest(), testMetadata())
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.AlreadyRegistered)
		assert.Equal(t, "Account already registered", result.Message)
		assert.Equal(t, models.AccountStatusApproved, result.Status)
		assert.True(t, result.Enabled)

		// The duplicate attempt must not notify
		assert.Len(t, notifications.SentMessages, sentBefore)
	})

	t.Run("SameAccountDifferentEATypes", func(t *testing.T) {
		flow, _, _ := newTestFlow()

		_, err := flow.Register(ctx, registerRequest(), testMetadata())
		require.NoError(t, err)

		req := registerRequest()
		req.EAType = "btc_swing"
		result, err := flow.Register(ctx, req, testMetadata())
		require.NoError(t, err)
		assert.False(t, result.AlreadyRegistered)
	})

	t.Run("MissingFields", func(t *testing.T) {
		flow, _, notifications := newTestFlow()

		for _, mutate := range []func(*dto.RegisterAccountRequest){
			func(r *dto.RegisterAccountRequest) { r.EAType = "" },
			func(r *dto.RegisterAccountRequest) { r.Account = "" },
			func(r *dto.RegisterAccountRequest) { r.Broker = "" },
			func(r *dto.RegisterAccountRequest) { r.Name = "  " },
			func(r *dto.RegisterAccountRequest) { r.Phone = "" },
		} {
			req := registerRequest()
			mutate(req)

			_, err := flow.Register(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMissingField(err))
		}

		assert.Empty(t, notifications.SentMessages)
	})

	t.Run("NotificationFailureDoesNotFailRegistration", func(t *testing.T) {
		flow, repo, notifications := newTestFlow()
		notifications.FailWith = assert.AnError

		result, err := flow.Register(ctx, registerRequest(), testMetadata())
		require.NoError(t, err)
		assert.False(t, result.AlreadyRegistered)

		acc, err := repo.ByKey(ctx, "gold_scalper", "12345")
		require.NoError(t, err)
		require.NotNil(t, acc)
	})
}

func TestListByType(t *testing.T) {
	ctx := context.Background()
	flow, repo, _ := newTestFlow()

	base := utils.UTCNow().Add(-1 * time.Hour)
	require.NoError(t, repo.Save(ctx, testingutil.NewAccountFixture("gold_scalper", "111", base)))
	require.NoError(t, repo.Save(ctx, testingutil.NewAccountFixture("gold_scalper", "222", base.Add(10*time.Minute))))
	require.NoError(t, repo.Save(ctx, testingutil.NewAccountFixture("gold_scalper", "333", base.Add(20*time.Minute))))
	require.NoError(t, repo.Save(ctx, testingutil.NewAccountFixture("btc_swing", "444", base.Add(30*time.Minute))))

	t.Run("NewestFirst", func(t *testing.T) {
		result, err := flow.ListByType(ctx, "gold_scalper", testMetadata())
		require.NoError(t, err)
		require.Len(t, result.Accounts, 3)
		assert.Equal(t, "333", result.Accounts[0].Account)
		assert.Equal(t, "222", result.Accounts[1].Account)
		assert.Equal(t, "111", result.Accounts[2].Account)
	})

	t.Run("UnknownTypeReturnsEmptyList", func(t *testing.T) {
		result, err := flow.ListByType(ctx, "unknown", testMetadata())
		require.NoError(t, err)
		assert.NotNil(t, result.Accounts)
		assert.Empty(t, result.Accounts)
	})
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()
	flow, repo, _ := newTestFlow()

	fixture := testingutil.NewAccountFixture("gold_scalper", "12345", utils.UTCNow())
	fixture.Broker = "Exness"
	fixture.Name = "Somchai"
	require.NoError(t, repo.Save(ctx, fixture))

	t.Run("KnownAccount", func(t *testing.T) {
		result, err := flow.GetStatus(ctx, "gold_scalper", "12345", testMetadata())
		require.NoError(t, err)
		assert.Equal(t, "12345", result.Account)
		assert.Equal(t, models.AccountStatusPending, result.Status)
		assert.False(t, result.Enabled)
		assert.Equal(t, "Exness", result.Broker)
		assert.Equal(t, "Somchai", result.Name)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		_, err := flow.GetStatus(ctx, "gold_scalper", "99999", testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsAccountNotFound(err))
	})

	t.Run("UnknownEAType", func(t *testing.T) {
		_, err := flow.GetStatus(ctx, "btc_swing", "12345", testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsAccountNotFound(err))
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (businessflow.AccountFlow, *testingutil.MemoryAccountRepository, *services.MockNotificationService) {
		flow, repo, notifications := newTestFlow()
		_, err := flow.Register(ctx, registerRequest(), testMetadata())
		require.NoError(t, err)
		notifications.SentMessages = nil
		return flow, repo, notifications
	}

	update := func(t *testing.T, flow businessflow.AccountFlow, status string, enabled bool) (*dto.UpdateAccountStatusResponse, error) {
		return flow.UpdateStatus(ctx, "gold_scalper", "12345", &dto.UpdateAccountStatusRequest{
			Status:  status,
			Enabled: &enabled,
		}, testMetadata())
	}

	t.Run("ApproveAndEnable", func(t *testing.T) {
		flow, repo, notifications := setup(t)

		result, err := update(t, flow, models.AccountStatusApproved, true)
		require.NoError(t, err)
		assert.Equal(t, "Status updated", result.Message)
		assert.Equal(t, models.AccountStatusApproved, result.Status)
		assert.True(t, result.Enabled)

		acc, err := repo.ByKey(ctx, "gold_scalper", "12345")
		require.NoError(t, err)
		assert.Equal(t, models.AccountStatusApproved, acc.Status)
		assert.True(t, acc.Enabled)
		assert.True(t, acc.UpdatedAt.After(acc.CreatedAt) || acc.UpdatedAt.Equal(acc.CreatedAt))

		require.Len(t, notifications.SentMessages, 1)
		assert.Contains(t, notifications.SentMessages[0], "Approved")
		assert.Contains(t, notifications.SentMessages[0], "12345")
	})

	t.Run("Reject", func(t *testing.T) {
		flow, _, notifications := setup(t)

		result, err := update(t, flow, models.AccountStatusRejected, false)
		require.NoError(t, err)
		assert.Equal(t, models.AccountStatusRejected, result.Status)
		assert.False(t, result.Enabled)

		require.Len(t, notifications.SentMessages, 1)
		assert.Contains(t, notifications.SentMessages[0], "rejected")
	})

	t.Run("RejectedTakesPrecedenceOverDisabled", func(t *testing.T) {
		flow, _, notifications := setup(t)

		// Rejected with enabled=false matches both the rejection and the
		// disabled transition; the rejection message must win.
		_, err := update(t, flow, models.AccountStatusRejected, false)
		require.NoError(t, err)

		require.Len(t, notifications.SentMessages, 1)
		assert.Contains(t, notifications.SentMessages[0], "rejected")
		assert.NotContains(t, notifications.SentMessages[0], "disabled")
	})

	t.Run("DisableApprovedAccount", func(t *testing.T) {
		flow, _, notifications := setup(t)

		_, err := update(t, flow, models.AccountStatusApproved, true)
		require.NoError(t, err)
		notifications.SentMessages = nil

		result, err := update(t, flow, models.AccountStatusApproved, false)
		require.NoError(t, err)
		assert.False(t, result.Enabled)

		require.Len(t, notifications.SentMessages, 1)
		assert.Contains(t, notifications.SentMessages[0], "disabled")
	})

	t.Run("PendingEnabledStaysSilent", func(t *testing.T) {
		flow, _, notifications := setup(t)

		// pending+enabled matches no transition branch
		_, err := update(t, flow, models.AccountStatusPending, true)
		require.NoError(t, err)
		assert.Empty(t, notifications.SentMessages)
	})

	t.Run("PendingDisabledNotifiesDisabled", func(t *testing.T) {
		flow, _, notifications := setup(t)

		_, err := update(t, flow, models.AccountStatusPending, false)
		require.NoError(t, err)
		require.Len(t, notifications.SentMessages, 1)
		assert.Contains(t, notifications.SentMessages[0], "disabled")
	})

	t.Run("InvalidStatusRejected", func(t *testing.T) {
		flow, repo, _ := setup(t)

		_, err := update(t, flow, "banana", true)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidAccountStatus(err))

		// The record is untouched
		acc, err := repo.ByKey(ctx, "gold_scalper", "12345")
		require.NoError(t, err)
		assert.Equal(t, models.AccountStatusPending, acc.Status)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		flow, repo, notifications := setup(t)

		enabled := true
		_, err := flow.UpdateStatus(ctx, "gold_scalper", "99999", &dto.UpdateAccountStatusRequest{
			Status:  models.AccountStatusApproved,
			Enabled: &enabled,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsAccountNotFound(err))
		assert.Empty(t, notifications.SentMessages)

		// The failed update must not create a record
		acc, err := repo.ByKey(ctx, "gold_scalper", "99999")
		require.NoError(t, err)
		assert.Nil(t, acc)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	flow, repo, notifications := newTestFlow()

	_, err := flow.Register(ctx, registerRequest(), testMetadata())
	require.NoError(t, err)
	notifications.SentMessages = nil

	t.Run("DeleteExisting", func(t *testing.T) {
		result, err := flow.DeleteAccount(ctx, "gold_scalper", "12345", testMetadata())
		require.NoError(t, err)
		assert.Equal(t, "Account deleted", result.Message)

		acc, err := repo.ByKey(ctx, "gold_scalper", "12345")
		require.NoError(t, err)
		assert.Nil(t, acc)

		// Deletion never notifies
		assert.Empty(t, notifications.SentMessages)
	})

	t.Run("DeleteUnknown", func(t *testing.T) {
		_, err := flow.DeleteAccount(ctx, "gold_scalper", "12345", testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsAccountNotFound(err))
	})
}
