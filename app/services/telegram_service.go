// Package services provides external service integrations and technical concerns like notifications
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ea-cloud/backend/config"
	"github.com/ea-cloud/backend/utils"
)

// TelegramService handles message delivery through the Telegram Bot API
type TelegramService interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// TelegramServiceImpl implements TelegramService
type TelegramServiceImpl struct {
	config *config.TelegramConfig
	client *http.Client
}

// telegramSendRequest represents the sendMessage payload for the Bot API
type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"` // Always HTML
}

// telegramSendResponse represents the Bot API response envelope
type telegramSendResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewTelegramService creates a new Telegram service instance
func NewTelegramService(cfg *config.TelegramConfig) TelegramService {
	return &TelegramServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendMessage delivers a single HTML-formatted message to a chat
func (s *TelegramServiceImpl) SendMessage(ctx context.Context, chatID, text string) error {
	requestBody, err := json.Marshal(telegramSendRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Telegram request: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Telegram request: %w", err)
	}
	defer resp.Body.Close()

	var result telegramSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("Telegram delivery failed for chat %s: %s (%d)", chatID, result.Description, result.ErrorCode)
	}

	return nil
}

// MockTelegramService implements TelegramService for testing
type MockTelegramService struct {
	SentMessages []MockTelegramMessage
	FailWith     error
}

// MockTelegramMessage represents a mock Telegram message
type MockTelegramMessage struct {
	ChatID string
	Text   string
	SentAt time.Time
}

// NewMockTelegramService creates a new mock Telegram service
func NewMockTelegramService() *MockTelegramService {
	return &MockTelegramService{
		SentMessages: make([]MockTelegramMessage, 0),
	}
}

// SendMessage records a mock Telegram message
func (m *MockTelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.SentMessages = append(m.SentMessages, MockTelegramMessage{
		ChatID: chatID,
		Text:   text,
		SentAt: utils.UTCNow(),
	})
	return nil
}

// ClearSentMessages clears the sent messages list
func (m *MockTelegramService) ClearSentMessages() {
	m.SentMessages = make([]MockTelegramMessage, 0)
}
