package notify

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

// TelegramChannel delivers notifications as Telegram messages to a chat the
// user has linked in their profile.
type TelegramChannel struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramChannel creates a Telegram channel from a bot token.
func NewTelegramChannel(token string) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	return &TelegramChannel{bot: bot}, nil
}

func (c *TelegramChannel) Name() string { return domain.ChannelTelegram }

func (c *TelegramChannel) Send(_ context.Context, p *domain.Profile, msg Message) error {
	if p.TelegramChatID == 0 {
		return errors.New("profile has no linked telegram chat")
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(p.TelegramChatID, msg.Title+"\n\n"+msg.Body))
	return err
}
