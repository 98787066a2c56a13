// Package telegram drives the question/answer service from a Telegram bot
// webhook. Outgoing messages use MarkdownV2, so every dynamic value is
// escaped before formatting.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/lexsearch/internal/logger"
)

const defaultAPIBase = "https://api.telegram.org"

// BotConfig holds the Bot API client settings.
type BotConfig struct {
	// Token is the bot token issued by BotFather.
	Token string

	// BaseURL overrides the Bot API endpoint, mainly for tests.
	BaseURL string

	// Timeout bounds each API call.
	Timeout time.Duration
}

// Bot is a minimal Telegram Bot API client. It only sends messages; all
// inbound traffic arrives through the webhook handler.
type Bot struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewBot creates the client.
func NewBot(cfg BotConfig) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Bot{
		token:      cfg.Token,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Token returns the bot token, used to build the webhook path.
func (b *Bot) Token() string {
	return b.token
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage delivers a MarkdownV2 message to a chat. The text must
// already be escaped.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", b.baseURL, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("Telegram API returned %d: %s", resp.StatusCode, string(detail))
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
