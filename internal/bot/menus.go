package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"deadline-bot/internal/service"
)

const (
	menuLabelDeadlines = "💼 Дедлайны"
	menuLabelDiploma   = "🎓 Средний балл диплома"
	menuLabelContacts  = "📞 Контакты администрации"
	menuLabelSubject   = "📚 Балл по предмету"
	btnCancel          = "⏪ Отмена"
)

const (
	cbDeadlineAdd          = "deadline_add"
	cbDeadlineList         = "deadline_list"
	cbDeadlineRemove       = "deadline_remove"
	cbDeadlineInstructions = "deadline_instructions"
	cbContactPrefix        = "contact_"
	cbMainMenu             = "main_menu"
)

type contact struct {
	Key   string
	Label string
	Text  string
}

var contacts = []contact{
	{
		Key:   "office",
		Label: "Учебная часть",
		Text: "📌 <b>Учебная часть</b>\n" +
			"📞 Телефон и кабинет уточняйте на сайте факультета\n" +
			"⏰ 09:30 - 18:00",
	},
	{
		Key:   "head",
		Label: "Руководитель",
		Text: "👩‍🏫 <b>Руководитель программы</b>\n" +
			"💬 Связь через учебную часть",
	},
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(msg.Text)
	switch text {
	case menuLabelDeadlines:
		b.clearState(msg.From.ID)
		return true, b.sendWithReplyMarkup(msg.Chat.ID, "Выберите действие с дедлайнами:", deadlineInlineKeyboard())
	case menuLabelDiploma:
		b.setState(msg.From.ID, stateDiplomaAverage)
		return true, b.sendWithReplyMarkup(msg.Chat.ID, "Введите оценки диплома через пробел, например <code>5 4 5</code>.", cancelKeyboard())
	case menuLabelSubject:
		b.setState(msg.From.ID, stateSubjectAverage)
		return true, b.sendWithReplyMarkup(msg.Chat.ID, "Введите оценки предмета через пробел.", cancelKeyboard())
	case menuLabelContacts:
		b.clearState(msg.From.ID)
		return true, b.sendWithReplyMarkup(msg.Chat.ID, "Выберите контакт:", contactsInlineKeyboard())
	}

	if action, ok := service.ActionByLabel(text); ok {
		b.clearState(msg.From.ID)
		return true, b.handleAction(ctx, msg, action)
	}
	return false, nil
}

func (b *Bot) handleGradeInput(msg *tgbotapi.Message, state inputState) error {
	defer b.clearState(msg.From.ID)

	avg, err := service.AverageGrade(msg.Text)
	switch {
	case errors.Is(err, service.ErrNoGrades):
		return b.sendText(msg.Chat.ID, "Нет оценок.")
	case err != nil:
		return b.sendText(msg.Chat.ID, "Некорректные оценки. Нужны числа через пробел.")
	}

	if state == stateDiplomaAverage {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🎓 Средний балл диплома: %.2f", avg))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📚 Средний балл предмета: %.2f", avg))
}

func (b *Bot) handleAction(ctx context.Context, msg *tgbotapi.Message, action service.Action) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = msg.From.UserName
	}

	delivered, err := b.actions.Call(ctx, userKey(msg.From.ID), name, action, b.now())
	if errors.Is(err, service.ErrActionTooSoon) {
		return b.sendText(msg.Chat.ID, "❗ Нельзя так часто, подождите неделю.")
	}
	if err != nil {
		b.log.Error("call action", zap.Error(err), zap.Int64("user", msg.From.ID), zap.String("action", action.Key))
		return b.sendText(msg.Chat.ID, "Не удалось отправить приглашение, попробуй позже.")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Сообщение отправлено всем! Получателей: %d.", delivered))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}

	if _, err := b.ensureUser(ctx, cb.From); err != nil {
		b.log.Error("register user", zap.Error(err), zap.Int64("user", cb.From.ID))
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	b.log.Info("callback", zap.Int64("user", cb.From.ID), zap.String("data", cb.Data))

	switch {
	case cb.Data == cbDeadlineAdd:
		return b.editText(chatID, messageID,
			"Добавить общий: /add_deadline &lt;предмет&gt; &lt;задание&gt; &lt;дата&gt;\n"+
				"Добавить личный: /add_personal_deadline &lt;предмет&gt; &lt;задание&gt; &lt;дата&gt;\n"+
				"(дата ДД.ММ.ГГГГ)")
	case cb.Data == cbDeadlineList:
		if err := b.sendText(chatID, b.deadlineOverview(cb.From.ID)); err != nil {
			return err
		}
		return b.editText(chatID, messageID, "✅ Список отправлен.")
	case cb.Data == cbDeadlineRemove:
		return b.editText(chatID, messageID,
			"Удалить общий: /remove_deadline &lt;номер&gt;\n"+
				"Удалить личный: /remove_personal_deadline &lt;номер&gt;")
	case cb.Data == cbDeadlineInstructions:
		return b.editText(chatID, messageID, deadlineInstructions)
	case strings.HasPrefix(cb.Data, cbContactPrefix):
		key := strings.TrimPrefix(cb.Data, cbContactPrefix)
		for _, c := range contacts {
			if c.Key == key {
				return b.editText(chatID, messageID, c.Text)
			}
		}
		return nil
	case cb.Data == cbMainMenu:
		return b.editText(chatID, messageID, "Выберите нужный раздел внизу экрана.")
	default:
		return nil
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuLabelDeadlines)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuLabelDiploma)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuLabelContacts)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuLabelSubject)),
	}
	for i := 0; i < len(service.Actions); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(service.Actions[i].Label))
		if i+1 < len(service.Actions) {
			row = append(row, tgbotapi.NewKeyboardButton(service.Actions[i+1].Label))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func deadlineInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить дедлайн", cbDeadlineAdd),
			tgbotapi.NewInlineKeyboardButtonData("📋 Список дедлайнов", cbDeadlineList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Удалить дедлайн", cbDeadlineRemove),
			tgbotapi.NewInlineKeyboardButtonData("ℹ Инструкция", cbDeadlineInstructions),
		),
	)
}

func contactsInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range contacts {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, cbContactPrefix+c.Key))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Назад", cbMainMenu)),
	)
}
