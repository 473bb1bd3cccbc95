package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Sender is the part of the Telegram client needed to push messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers plain-text messages to Telegram chats, throttled to stay
// under the Bot API flood limits.
type Notifier struct {
	api     Sender
	limiter *rate.Limiter
}

func NewNotifier(api Sender, perSecond int) *Notifier {
	if perSecond <= 0 {
		perSecond = 25
	}
	return &Notifier{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

// SendText sends text to the chat whose id is recipient.
func (n *Notifier) SendText(ctx context.Context, recipient, text string) error {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait send slot: %w", err)
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}
