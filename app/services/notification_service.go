// Package services provides external service integrations and technical concerns like notifications
package services

import (
	"context"
	"log"

	"github.com/ea-cloud/backend/config"
)

// NotificationService handles sending operator notifications
type NotificationService interface {
	SendPermissionMessage(ctx context.Context, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	telegram TelegramService
	config   *config.TelegramConfig
}

// NewNotificationService creates a new notification service
func NewNotificationService(telegram TelegramService, cfg *config.TelegramConfig) NotificationService {
	return &NotificationServiceImpl{
		telegram: telegram,
		config:   cfg,
	}
}

// SendPermissionMessage sends a message to the permission channel.
// When the bot token or chat ID is not configured the message is
// skipped silently; notifications are advisory.
func (s *NotificationServiceImpl) SendPermissionMessage(ctx context.Context, message string) error {
	if s.telegram == nil || s.config.BotToken == "" || s.config.PermissionChatID == "" {
		log.Println("Telegram not configured, skipping notification")
		return nil
	}

	return s.telegram.SendMessage(ctx, s.config.PermissionChatID, message)
}

// MockNotificationService implements NotificationService for testing
type MockNotificationService struct {
	SentMessages []string
	FailWith     error
}

// NewMockNotificationService creates a new mock notification service
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{
		SentMessages: make([]string, 0),
	}
}

// SendPermissionMessage records a mock permission-channel message
func (m *MockNotificationService) SendPermissionMessage(ctx context.Context, message string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.SentMessages = append(m.SentMessages, message)
	return nil
}
