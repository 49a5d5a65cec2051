package tests

import (
	"context"
	"testing"
	"time"

	"github.com/ea-cloud/backend/app/services"
	"github.com/ea-cloud/backend/config"
	"github.com/stretchr/testify/assert"
)

func TestMockTelegramService(t *testing.T) {
	mock := services.NewMockTelegramService()
	ctx := context.Background()

	err := mock.SendMessage(ctx, "-100123456", "<b>hello</b>")
	assert.NoError(t, err)

	assert.Len(t, mock.SentMessages, 1)
	assert.Equal(t, "-100123456", mock.SentMessages[0].ChatID)
	assert.Equal(t, "<b>hello</b>", mock.SentMessages[0].Text)
	assert.False(t, mock.SentMessages[0].SentAt.IsZero())

	mock.ClearSentMessages()
	assert.Len(t, mock.SentMessages, 0)

	mock.FailWith = assert.AnError
	err = mock.SendMessage(ctx, "-100123456", "again")
	assert.Error(t, err)
	assert.Len(t, mock.SentMessages, 0)
}

func TestNotificationServiceSkipsWhenUnconfigured(t *testing.T) {
	ctx := context.Background()

	t.Run("NoBotToken", func(t *testing.T) {
		telegram := services.NewMockTelegramService()
		cfg := &config.TelegramConfig{
			PermissionChatID: "-100123456",
			Timeout:          5 * time.Second,
		}
		svc := services.NewNotificationService(telegram, cfg)

		err := svc.SendPermissionMessage(ctx, "hello")
		assert.NoError(t, err)
		assert.Empty(t, telegram.SentMessages)
	})

	t.Run("NoChatID", func(t *testing.T) {
		telegram := services.NewMockTelegramService()
		cfg := &config.TelegramConfig{
			BotToken: "123:abc",
			Timeout:  5 * time.Second,
		}
		svc := services.NewNotificationService(telegram, cfg)

		err := svc.SendPermissionMessage(ctx, "hello")
		assert.NoError(t, err)
		assert.Empty(t, telegram.SentMessages)
	})
}

func TestNotificationServiceSendsToPermissionChannel(t *testing.T) {
	telegram := services.NewMockTelegramService()
	cfg := &config.TelegramConfig{
		BotToken:          "123:abc",
		PermissionChatID:  "-100123456",
		PerformanceChatID: "-100999999",
		Timeout:           5 * time.Second,
	}
	svc := services.NewNotificationService(telegram, cfg)

	err := svc.SendPermissionMessage(context.Background(), "🆕 <b>New approval request</b>")
	assert.NoError(t, err)

	assert.Len(t, telegram.SentMessages, 1)
	assert.Equal(t, "-100123456", telegram.SentMessages[0].ChatID)
	assert.Contains(t, telegram.SentMessages[0].Text, "New approval request")
}
