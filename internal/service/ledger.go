package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"deadline-bot/internal/model"
)

// ReminderRepository persists sent-reminder keys per scope.
type ReminderRepository interface {
	Load(ctx context.Context, scope model.Scope) (map[string]time.Time, error)
	Insert(ctx context.Context, scope model.Scope, key string, sentAt time.Time) error
}

// Ledger records which reminders were already sent for one scope.
// Entries are never removed, so a key suppresses its reminder forever.
type Ledger struct {
	scope model.Scope
	repo  ReminderRepository
	log   *zap.Logger

	mu   sync.RWMutex
	sent map[string]time.Time
}

// NewLedger loads the ledger of scope; a load failure starts it empty.
func NewLedger(ctx context.Context, scope model.Scope, repo ReminderRepository, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		scope: scope,
		repo:  repo,
		log:   log.Named("ledger").With(zap.String("scope", string(scope))),
		sent:  make(map[string]time.Time),
	}
	sent, err := repo.Load(ctx, scope)
	if err != nil {
		l.log.Error("load ledger failed, starting empty", zap.Error(err))
		return l
	}
	for k, v := range sent {
		l.sent[k] = v
	}
	return l
}

func (l *Ledger) HasSent(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sent[key]
	return ok
}

// SentAt returns when key was recorded.
func (l *Ledger) SentAt(key string) (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	at, ok := l.sent[key]
	return at, ok
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sent)
}

// MarkSent records key. Marking a known key again does nothing.
// The key stays recorded in memory even when the write fails.
func (l *Ledger) MarkSent(ctx context.Context, key string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sent[key]; ok {
		return nil
	}
	l.sent[key] = at
	return l.repo.Insert(ctx, l.scope, key, at)
}
