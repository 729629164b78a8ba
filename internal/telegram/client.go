// Package telegram wraps the Telegram Bot API client used to deliver
// forwarded SMS notifications. The bot only sends messages here; the
// conversational onboarding flow lives in a separate application.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
)

// Client sends messages to Telegram chats.
type Client struct {
	bot    *tgbot.Bot
	logger *slog.Logger
}

// New creates a Telegram client from a bot token. The client does not start
// update polling; it is used purely as a message sender.
func New(token string, logger *slog.Logger, opts ...tgbot.Option) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Client{
		bot:    b,
		logger: logger.With("component", "telegram"),
	}, nil
}

// SendMessage delivers text to the chat identified by chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to send telegram message",
			"chat_id", chatID,
			"error", err)
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	c.logger.DebugContext(ctx, "Telegram message sent", "chat_id", chatID)
	return nil
}
