package notify

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"collab-todo/internal/repository"
)

// TelegramNotifier is the notification transport. It also runs the account
// linking flow: a user opens t.me/<bot>?start=<userID> and the bot stores
// that chat as the user's notification destination.
type TelegramNotifier struct {
	api      *tgbotapi.BotAPI
	userRepo *repository.UserRepository
}

func NewTelegramNotifier(token string, userRepo *repository.UserRepository) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &TelegramNotifier{api: api, userRepo: userRepo}, nil
}

// Send delivers a text message to the given chat. Errors are returned to
// the caller, never panicked.
func (n *TelegramNotifier) Send(ctx context.Context, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	msg := tgbotapi.NewMessage(id, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// ConnectLink builds the deep link a user opens to link their chat.
func (n *TelegramNotifier) ConnectLink(userID uint) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", n.api.Self.UserName, userID)
}

// Start polls updates until ctx is cancelled, handling the linking flow.
func (n *TelegramNotifier) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := n.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		n.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := n.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (n *TelegramNotifier) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() || msg.Command() != "start" {
		return n.reply(msg.Chat.ID, "Open the connect link in the app to link this chat to your account.")
	}

	arg := strings.TrimSpace(msg.CommandArguments())
	userID, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || userID == 0 {
		return n.reply(msg.Chat.ID, "This link is incomplete. Open the connect link from the app instead.")
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if err := n.userRepo.LinkTelegramChat(ctx, uint(userID), chatID); err != nil {
		log.Printf("link chat %s to user %d: %v", chatID, userID, err)
		return n.reply(msg.Chat.ID, "Could not link this chat. Check the link and try again.")
	}

	return n.reply(msg.Chat.ID, "✅ Linked! You will receive your reminders here.")
}

func (n *TelegramNotifier) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
