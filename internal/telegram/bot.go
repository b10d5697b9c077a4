package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/aletheialabs/aletheia/internal/chat"
	"github.com/aletheialabs/aletheia/internal/logger"
)

// Bot is a thin Telegram transport over the shared chat session logic. Every
// incoming text message goes through the same lens dispatch, retrieval and
// interaction logging as the terminal loop.
type Bot struct {
	bot     *bot.Bot
	session *chat.Session
}

// NewBot creates a Telegram bot bound to a chat session.
func NewBot(token string, session *chat.Session) (*Bot, error) {
	b := &Bot{session: session}

	botAPI, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	b.bot = botAPI
	return b, nil
}

// Start begins polling for updates and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	logger.Info("Telegram bot polling for updates")
	b.bot.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, tgbot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	logger.Debug("Message from chat %d: %q", message.Chat.ID, message.Text)

	var reply string
	switch message.Text {
	case "/start":
		reply = "Aletheia is ready. Ask me anything, or type 'lens: <lens name> <your query>' to use a reasoning lens."
	default:
		reply = b.session.Respond(ctx, message.Text)
	}
	if reply == "" {
		return
	}

	if _, err := tgbot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: message.Chat.ID,
		Text:   reply,
	}); err != nil {
		logger.Error("Failed to send reply to chat %d: %v", message.Chat.ID, err)
	}
}
