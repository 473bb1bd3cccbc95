package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"deadline-bot/internal/model"
	"deadline-bot/internal/service"
)

// API is the subset of *tgbotapi.BotAPI used by the bot.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// UserRegistrar records everyone who talks to the bot.
type UserRegistrar interface {
	UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error)
}

type inputState int

const (
	stateNone inputState = iota
	stateDiplomaAverage
	stateSubjectAverage
)

// Bot aggregates Telegram API with services.
type Bot struct {
	api       API
	users     UserRegistrar
	deadlines *service.DeadlineStore
	actions   *service.ActionService
	log       *zap.Logger
	now       func() time.Time

	states map[int64]inputState
	mu     sync.Mutex
}

func New(api API, users UserRegistrar, deadlines *service.DeadlineStore, actions *service.ActionService, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:       api,
		users:     users,
		deadlines: deadlines,
		actions:   actions,
		log:       log.Named("bot"),
		now:       time.Now,
		states:    make(map[int64]inputState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		b.log.Warn("set bot commands failed", zap.Error(err))
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Запуск бота"},
	{Command: "add_deadline", Description: "Добавить общий дедлайн"},
	{Command: "list_deadlines", Description: "Список общих и личных дедлайнов"},
	{Command: "remove_deadline", Description: "Удалить общий дедлайн"},
	{Command: "deadline_instructions", Description: "Инструкция по дедлайнам"},
	{Command: "add_personal_deadline", Description: "Добавить личный дедлайн"},
	{Command: "list_personal_deadlines", Description: "Список личных дедлайнов"},
	{Command: "remove_personal_deadline", Description: "Удалить личный дедлайн"},
	{Command: "help", Description: "Подсказки"},
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	// Everyone who writes becomes part of the broadcast audience.
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		b.log.Error("register user", zap.Error(err), zap.Int64("user", msg.From.ID))
	}

	if msg.IsCommand() {
		b.log.Info("command", zap.Int64("user", msg.From.ID), zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	if isCancelInput(msg.Text) {
		b.clearState(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if state := b.getState(msg.From.ID); state != stateNone {
		return b.handleGradeInput(msg, state)
	}

	return b.sendText(msg.Chat.ID, "Не понял команду. Воспользуйтесь меню или /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		b.clearState(msg.From.ID)
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "add_deadline":
		return b.handleAddDeadline(ctx, msg, model.ScopeShared)
	case "add_personal_deadline":
		return b.handleAddDeadline(ctx, msg, model.ScopePersonal)
	case "list_deadlines":
		return b.handleListDeadlines(msg)
	case "list_personal_deadlines":
		return b.handleListPersonalDeadlines(msg)
	case "remove_deadline":
		return b.handleRemoveDeadline(ctx, msg, model.ScopeShared)
	case "remove_personal_deadline":
		return b.handleRemoveDeadline(ctx, msg, model.ScopePersonal)
	case "deadline_instructions":
		return b.sendText(msg.Chat.ID, deadlineInstructions)
	case "cancel":
		b.clearState(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я слежу за общими и личными дедлайнами</b> и напомню о них за 5, 3 и 1 день.\n\n"+
			"Пользуйся меню внизу или набери /help.",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /add_deadline &lt;предмет&gt; &lt;задание&gt; &lt;ДД.ММ.ГГГГ&gt; — общий дедлайн для всех\n" +
		"• /add_personal_deadline &lt;предмет&gt; &lt;задание&gt; &lt;ДД.ММ.ГГГГ&gt; — личный дедлайн\n" +
		"• /list_deadlines — общие и твои личные дедлайны\n" +
		"• /list_personal_deadlines — только личные\n" +
		"• /remove_deadline &lt;номер&gt; — удалить общий дедлайн\n" +
		"• /remove_personal_deadline &lt;номер&gt; — удалить личный дедлайн\n" +
		"• /deadline_instructions — формат ввода\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) getState(userID int64) inputState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, state inputState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, userID)
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена"
}

func escape(s string) string {
	return html.EscapeString(s)
}
