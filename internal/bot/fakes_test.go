package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"deadline-bot/internal/repository"
	"deadline-bot/internal/service"
)

var errSendFailed = errors.New("telegram unavailable")

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	failChat map[int64]bool
	updates  chan tgbotapi.Update
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failChat: map[int64]bool{}, updates: make(chan tgbotapi.Update, 16)}
}

func (a *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if mc, ok := c.(tgbotapi.MessageConfig); ok && a.failChat[mc.ChatID] {
		return tgbotapi.Message{}, errSendFailed
	}
	a.sent = append(a.sent, c)
	return tgbotapi.Message{}, nil
}

func (a *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (a *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return a.updates
}

func (a *fakeAPI) StopReceivingUpdates() {}

// messagesTo returns the texts of plain messages sent to chatID.
func (a *fakeAPI) messagesTo(chatID int64) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, c := range a.sent {
		if mc, ok := c.(tgbotapi.MessageConfig); ok && mc.ChatID == chatID {
			out = append(out, mc.Text)
		}
	}
	return out
}

func (a *fakeAPI) lastMessage(t *testing.T, chatID int64) string {
	t.Helper()
	msgs := a.messagesTo(chatID)
	require.NotEmpty(t, msgs, "no messages to chat %d", chatID)
	return msgs[len(msgs)-1]
}

func (a *fakeAPI) edits() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, c := range a.sent {
		if ec, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, ec.Text)
		}
	}
	return out
}

type botFixture struct {
	bot   *Bot
	api   *fakeAPI
	users *repository.UserRepository
	store *service.DeadlineStore
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	db, err := repository.NewDB(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	api := newFakeAPI()
	users := repository.NewUserRepository(db)
	store := service.NewDeadlineStore(context.Background(), repository.NewDeadlineRepository(db), time.UTC, nil)
	actions := service.NewActionService(repository.NewActionRepository(db), users, NewNotifier(api, 1000), 7*24*time.Hour, nil)

	return &botFixture{
		bot:   New(api, users, store, actions, nil),
		api:   api,
		users: users,
		store: store,
	}
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, FirstName: "Alice"},
		Chat:      &tgbotapi.Chat{ID: userID, Type: "private"},
		Text:      text,
	}
}

func commandMessage(userID int64, text string) *tgbotapi.Message {
	msg := textMessage(userID, text)
	command := strings.Fields(text)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return msg
}
