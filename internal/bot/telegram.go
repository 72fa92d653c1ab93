package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/logger"
)

// Telegram caps messages at 4096 characters; splitting a little earlier
// leaves room for the part header.
const maxMessageLength = 4000

// TelegramRuntime owns the long-polling connection to the Telegram Bot API
// and dispatches each inbound message to the handler on its own goroutine.
type TelegramRuntime struct {
	api         *tgbotapi.BotAPI
	handler     *Handler
	pollTimeout int
	logger      *logger.Log
}

func NewTelegramRuntime(cfg *config.TelegramConfig, handler *Handler) (*TelegramRuntime, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	return &TelegramRuntime{
		api:         api,
		handler:     handler,
		pollTimeout: cfg.PollTimeout,
		logger:      logger.New(),
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (t *TelegramRuntime) Run(ctx context.Context) error {
	if err := t.registerCommands(); err != nil {
		t.logger.WithError(err).Warn("failed to register bot commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout

	updates := t.api.GetUpdatesChan(u)
	t.logger.Info(fmt.Sprintf("telegram runtime started as @%s", t.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go t.dispatch(ctx, update.Message)
		}
	}
}

// registerCommands publishes the command menu shown by Telegram clients.
func (t *TelegramRuntime) registerCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "What this bot does"},
		tgbotapi.BotCommand{Command: "help", Description: "How to use the bot"},
	)
	_, err := t.api.Request(commands)
	return err
}

func (t *TelegramRuntime) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Unknown commands fall through and are treated as questions
	if msg.IsCommand() && t.handler.HandleCommand(ctx, t, chatID, msg.Command()) {
		return
	}

	stopTyping := t.startTyping(ctx, chatID)
	defer stopTyping()

	t.handler.HandleMessage(ctx, t, chatID, msg.Text)
}

// startTyping keeps the "typing..." indicator alive while a completion is in
// flight. Telegram expires the indicator after about five seconds, so it is
// re-sent until the returned stop function is called.
func (t *TelegramRuntime) startTyping(ctx context.Context, chatID int64) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()

		for {
			if _, err := t.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
				t.logger.WithError(err).Debug("failed to send typing action")
			}

			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() { close(done) }
}

// SendMessage implements Sender, splitting replies that exceed the Telegram
// message size limit.
func (t *TelegramRuntime) SendMessage(ctx context.Context, chatID int64, text string) error {
	parts := splitMessage(text, maxMessageLength)

	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(parts) > 1 {
			part = fmt.Sprintf("Part %d of %d:\n\n%s", i+1, len(parts), part)
		}

		if _, err := t.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return fmt.Errorf("telegram send failed: %w", err)
		}
	}

	return nil
}

// SendTracked implements MessageEditor; the returned id can be edited or
// deleted later. Status messages are short, so no splitting here.
func (t *TelegramRuntime) SendTracked(ctx context.Context, chatID int64, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, fmt.Errorf("telegram send failed: %w", err)
	}
	return msg.MessageID, nil
}

// EditMessage implements MessageEditor.
func (t *TelegramRuntime) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("telegram edit failed: %w", err)
	}
	return nil
}

// DeleteMessage implements MessageEditor.
func (t *TelegramRuntime) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram delete failed: %w", err)
	}
	return nil
}

// splitMessage breaks text on line boundaries so no part exceeds limit
// characters. A single line longer than the limit is hard-cut.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var parts []string
	var current []string
	length := 0

	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.Join(current, "\n"))
			current = nil
			length = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		line = string(runes)

		lineLength := len(runes) + 1 // +1 for the newline
		if length+lineLength > limit && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		length += lineLength
	}
	flush()

	return parts
}
