// Package telegram posts operator notifications to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Sender is the part of the bot API used by the Notifier.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier implements ports.OperatorNotifier by messaging a fixed chat.
type Notifier struct {
	sender Sender
	chatID int64
}

// New creates a bot for token and returns a Notifier posting to chatID.
func New(token string, chatID int64, opts ...bot.Option) (*Notifier, error) {
	b, err := bot.New(token, append([]bot.Option{bot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error creating bot: %w", err)
	}
	return NewWithSender(b, chatID), nil
}

// NewWithSender creates a Notifier on an existing sender.
func NewWithSender(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// NotifyOperator posts a summary of the new submission.
func (n *Notifier) NotifyOperator(ctx context.Context, c domain.Contact, flowType string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "New %s submission\n", flowType)
	fmt.Fprintf(&sb, "Name: %s\nEmail: %s\n", c.Name, c.Email)
	if c.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", c.Phone)
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   sb.String(),
	})
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}
