package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot drives the dispatcher over Telegram long polling.
type TelegramBot struct {
	api        *tgbotapi.BotAPI
	dispatcher *Dispatcher
}

func NewTelegramBot(token string, dispatcher *Dispatcher) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram api: %w", err)
	}
	return &TelegramBot{api: api, dispatcher: dispatcher}, nil
}

// Run polls for updates until the context is cancelled. Non-command
// messages are ignored.
func (b *TelegramBot) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Telegram bot started", "username", b.api.Self.UserName)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.InfoContext(ctx, "Telegram bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *TelegramBot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	slog.InfoContext(ctx, "Handling command",
		"command", command,
		"chat_id", msg.Chat.ID)

	text := b.dispatcher.Dispatch(ctx, command, args)

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		slog.ErrorContext(ctx, "Failed to send reply",
			"command", command,
			"chat_id", msg.Chat.ID,
			"error", err)
	}
}
