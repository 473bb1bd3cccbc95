package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"deadline-bot/internal/model"
	"deadline-bot/internal/service"
)

const deadlineInstructions = "📝 <b>Как добавить дедлайн</b>\n\n" +
	"Общий (увидят все):\n/add_deadline &lt;предмет&gt; &lt;задание&gt; &lt;дата&gt;\n\n" +
	"Личный (только для тебя):\n/add_personal_deadline &lt;предмет&gt; &lt;задание&gt; &lt;дата&gt;\n\n" +
	"Дата в формате ДД.ММ.ГГГГ, например <code>/add_deadline Матан ДЗ1 01.01.2030</code>.\n" +
	"Предмет — одно слово, задание может состоять из нескольких."

var errDeadlineUsage = errors.New("usage: <subject> <task> <DD.MM.YYYY>")

// parseDeadlineArgs splits "subject task words... date": the first word is the
// subject, the last one the date, everything between is the task.
func parseDeadlineArgs(args string) (subject, task, date string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return "", "", "", errDeadlineUsage
	}
	subject = fields[0]
	date = fields[len(fields)-1]
	task = strings.Join(fields[1:len(fields)-1], " ")
	return subject, task, date, nil
}

// parsePosition converts a 1-based list number into a store index.
func parsePosition(args string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func (b *Bot) handleAddDeadline(ctx context.Context, msg *tgbotapi.Message, scope model.Scope) error {
	command := "/add_deadline"
	if scope == model.ScopePersonal {
		command = "/add_personal_deadline"
	}

	subject, task, date, err := parseDeadlineArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Формат: %s &lt;предмет&gt; &lt;задание&gt; &lt;ДД.ММ.ГГГГ&gt;", command))
	}

	var d model.Deadline
	if scope == model.ScopePersonal {
		d, err = b.deadlines.AddPersonal(ctx, userKey(msg.From.ID), subject, task, date)
	} else {
		d, err = b.deadlines.AddShared(ctx, subject, task, date)
	}
	if errors.Is(err, service.ErrInvalidDate) {
		return b.sendText(msg.Chat.ID, "❌ Не могу распознать дату. Используй формат <code>ДД.ММ.ГГГГ</code>, например <code>01.01.2030</code>.")
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сохранить дедлайн: %s", escape(err.Error())))
	}

	b.log.Info("deadline added", zap.String("scope", string(scope)), zap.Int64("user", msg.From.ID), zap.String("subject", d.Subject), zap.String("date", d.DueDate))

	label := "Общий дедлайн"
	if scope == model.ScopePersonal {
		label = "Личный дедлайн"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ %s добавлен: %s", label, formatDeadline(d)))
}

func (b *Bot) handleListDeadlines(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, b.deadlineOverview(msg.From.ID))
}

func (b *Bot) handleListPersonalDeadlines(msg *tgbotapi.Message) error {
	personal := b.deadlines.ListPersonal(userKey(msg.From.ID))
	return b.sendText(msg.Chat.ID, formatDeadlineList("🔒 Ваши личные дедлайны", personal))
}

// deadlineOverview lists shared deadlines followed by the user's own ones.
func (b *Bot) deadlineOverview(userID int64) string {
	shared := formatDeadlineList("📋 Общие дедлайны", b.deadlines.ListShared())
	personal := formatDeadlineList("🔒 Ваши личные дедлайны", b.deadlines.ListPersonal(userKey(userID)))
	return shared + "\n\n" + personal
}

func (b *Bot) handleRemoveDeadline(ctx context.Context, msg *tgbotapi.Message, scope model.Scope) error {
	command := "/remove_deadline"
	if scope == model.ScopePersonal {
		command = "/remove_personal_deadline"
	}

	index, ok := parsePosition(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Укажи номер из списка: %s 1", command))
	}

	var (
		removed model.Deadline
		err     error
	)
	if scope == model.ScopePersonal {
		removed, err = b.deadlines.RemovePersonal(ctx, userKey(msg.From.ID), index)
	} else {
		removed, err = b.deadlines.RemoveShared(ctx, index)
	}
	if errors.Is(err, service.ErrIndexOutOfRange) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Нет дедлайна с номером %d. Проверь список через /list_deadlines.", index+1))
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	b.log.Info("deadline removed", zap.String("scope", string(scope)), zap.Int64("user", msg.From.ID), zap.String("subject", removed.Subject), zap.String("date", removed.DueDate))
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Удалено: %s", formatDeadline(removed)))
}

func formatDeadline(d model.Deadline) string {
	return fmt.Sprintf("%s / %s / %s", escape(d.Subject), escape(d.Task), escape(d.DueDate))
}

func formatDeadlineList(title string, items []model.Deadline) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<b>%s</b>\n", title))
	if len(items) == 0 {
		builder.WriteString("Нет.")
		return builder.String()
	}
	for i, d := range items {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatDeadline(d)))
	}
	return strings.TrimSpace(builder.String())
}
