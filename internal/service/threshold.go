package service

import (
	"fmt"
	"strconv"
	"time"

	"deadline-bot/internal/model"
)

var DefaultReminderHours = []int{24, 72, 120}

const DefaultCheckInterval = 60 * time.Second

// Evaluator decides which reminder thresholds fire for a deadline on a tick.
type Evaluator struct {
	hours    []int
	interval time.Duration
}

// DueReminder is a threshold that fired and has not been sent yet.
type DueReminder struct {
	Hours int
	Key   string
}

type sentChecker interface {
	HasSent(key string) bool
}

func NewEvaluator(hours []int, interval time.Duration) Evaluator {
	if len(hours) == 0 {
		hours = DefaultReminderHours
	}
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return Evaluator{hours: append([]int(nil), hours...), interval: interval}
}

func (e Evaluator) Hours() []int { return append([]int(nil), e.hours...) }

func (e Evaluator) Interval() time.Duration { return e.interval }

// Crossed reports the thresholds whose window contains now: h is crossed when
// the time left until due is in (h - interval, h]. Each threshold therefore
// falls into exactly one tick as long as ticks are interval apart.
func (e Evaluator) Crossed(due, now time.Time) []int {
	left := due.Sub(now)
	var out []int
	for _, h := range e.hours {
		upper := time.Duration(h) * time.Hour
		if left <= upper && left > upper-e.interval {
			out = append(out, h)
		}
	}
	return out
}

// Pending returns the crossed thresholds whose key is not in the ledger.
func (e Evaluator) Pending(due, now time.Time, key func(h int) string, ledger sentChecker) []DueReminder {
	var out []DueReminder
	for _, h := range e.Crossed(due, now) {
		k := key(h)
		if ledger.HasSent(k) {
			continue
		}
		out = append(out, DueReminder{Hours: h, Key: k})
	}
	return out
}

func SharedKey(d model.Deadline, h int) string {
	return d.Subject + "_" + d.DueDate + "_" + strconv.Itoa(h)
}

func PersonalKey(userID string, d model.Deadline, h int) string {
	return userID + "_" + d.Subject + "_" + d.DueDate + "_" + strconv.Itoa(h)
}

// ReminderNote is the "time left" line for a threshold.
func ReminderNote(h int) string {
	switch h {
	case 24:
		return "Остался 1 день"
	case 72:
		return "Осталось 3 дня"
	case 120:
		return "Осталось 5 дней"
	default:
		return fmt.Sprintf("Осталось %d часов", h)
	}
}

func FormatReminder(scope model.Scope, d model.Deadline, h int) string {
	header := "(Общий дедлайн)"
	if scope == model.ScopePersonal {
		header = "(Личный дедлайн)"
	}
	return fmt.Sprintf(
		"⚠️ %s\n\n📚 Предмет: %s\n📝 Задание: %s\n⏰ Дедлайн: %s\n❗ %s",
		header, d.Subject, d.Task, d.DueDate, ReminderNote(h),
	)
}
