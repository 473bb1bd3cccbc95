package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"deadline-bot/internal/model"
)

// UserRegistry supplies the broadcast audience for shared deadlines.
type UserRegistry interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Notifier delivers a text to one recipient. Errors are per recipient.
type Notifier interface {
	SendText(ctx context.Context, recipient, text string) error
}

// TickReport summarizes one pass over all deadlines.
type TickReport struct {
	Fired     int // ledger entries created
	Delivered int // messages accepted by the notifier
	Failed    int // messages the notifier rejected
	Skipped   int // records with an unparseable date
}

// ReminderService runs the periodic reminder check over shared and personal deadlines.
type ReminderService struct {
	store    *DeadlineStore
	shared   *Ledger
	personal *Ledger
	users    UserRegistry
	notifier Notifier
	eval     Evaluator
	loc      *time.Location
	log      *zap.Logger

	// ticks never overlap
	tickMu sync.Mutex
}

func NewReminderService(store *DeadlineStore, shared, personal *Ledger, users UserRegistry, notifier Notifier, eval Evaluator, loc *time.Location, log *zap.Logger) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderService{
		store:    store,
		shared:   shared,
		personal: personal,
		users:    users,
		notifier: notifier,
		eval:     eval,
		loc:      loc,
		log:      log.Named("reminders"),
	}
}

// RunTick checks every deadline against now. Shared deadlines are processed in
// stored order first, then personal ones user by user.
func (s *ReminderService) RunTick(ctx context.Context, now time.Time) TickReport {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	var report TickReport
	s.checkShared(ctx, now, &report)
	s.checkPersonal(ctx, now, &report)

	if report.Fired > 0 || report.Skipped > 0 {
		s.log.Info("tick finished",
			zap.Time("now", now),
			zap.Int("fired", report.Fired),
			zap.Int("delivered", report.Delivered),
			zap.Int("failed", report.Failed),
			zap.Int("skipped", report.Skipped),
		)
	} else {
		s.log.Debug("tick finished", zap.Time("now", now))
	}
	return report
}

func (s *ReminderService) checkShared(ctx context.Context, now time.Time, report *TickReport) {
	for _, d := range s.store.ListShared() {
		due, err := ParseDueDate(d.DueDate, s.loc)
		if err != nil {
			s.log.Warn("skip shared deadline with bad date", zap.String("subject", d.Subject), zap.String("date", d.DueDate))
			report.Skipped++
			continue
		}
		keyFn := func(h int) string { return SharedKey(d, h) }
		for _, r := range s.eval.Pending(due, now, keyFn, s.shared) {
			audience, err := s.users.ListIDs(ctx)
			if err != nil {
				s.log.Error("load audience failed", zap.Error(err), zap.String("key", r.Key))
				continue
			}
			text := FormatReminder(model.ScopeShared, d, r.Hours)
			for _, uid := range audience {
				s.dispatch(ctx, uid, text, r.Key, report)
			}
			s.mark(ctx, s.shared, r.Key, now, report)
		}
	}
}

func (s *ReminderService) checkPersonal(ctx context.Context, now time.Time, report *TickReport) {
	for _, list := range s.store.PersonalSnapshot() {
		userID := list.UserID
		for _, d := range list.Deadlines {
			due, err := ParseDueDate(d.DueDate, s.loc)
			if err != nil {
				s.log.Warn("skip personal deadline with bad date", zap.String("user", userID), zap.String("subject", d.Subject), zap.String("date", d.DueDate))
				report.Skipped++
				continue
			}
			keyFn := func(h int) string { return PersonalKey(userID, d, h) }
			for _, r := range s.eval.Pending(due, now, keyFn, s.personal) {
				s.dispatch(ctx, userID, FormatReminder(model.ScopePersonal, d, r.Hours), r.Key, report)
				s.mark(ctx, s.personal, r.Key, now, report)
			}
		}
	}
}

func (s *ReminderService) dispatch(ctx context.Context, recipient, text, key string, report *TickReport) {
	if err := s.notifier.SendText(ctx, recipient, text); err != nil {
		s.log.Error("send reminder failed", zap.Error(err), zap.String("user", recipient), zap.String("key", key))
		report.Failed++
		return
	}
	report.Delivered++
}

func (s *ReminderService) mark(ctx context.Context, ledger *Ledger, key string, now time.Time, report *TickReport) {
	report.Fired++
	if err := ledger.MarkSent(ctx, key, now); err != nil {
		s.log.Error("persist ledger entry failed", zap.Error(err), zap.String("key", key))
	}
}
