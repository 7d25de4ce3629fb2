package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
)

// Client wraps the Telegram bot API in webhook mode. Updates arrive through
// the HTTP server, not long polling.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewClient(cfg config.TelegramConfig, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Client{
		api:    api,
		logger: logger.With(zap.String("adapter", "telegram")),
	}, nil
}

// RegisterWebhook points the bot at the public webhook URL.
func (c *Client) RegisterWebhook(baseURL, path string) error {
	wh, err := tgbotapi.NewWebhook(baseURL + path)
	if err != nil {
		return err
	}
	if _, err := c.api.Request(wh); err != nil {
		return err
	}
	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return err
	}
	if info.LastErrorDate != 0 {
		c.logger.Warn("webhook reported a previous delivery failure",
			zap.String("last_error", info.LastErrorMessage))
	}
	c.logger.Info("webhook registered", zap.String("url", baseURL+path))
	return nil
}

func (c *Client) SendText(ctx context.Context, chatId int64, text string) error {
	msg := tgbotapi.NewMessage(chatId, text)
	_, err := c.api.Send(msg)
	return err
}

var _ port.Messenger = (*Client)(nil)
