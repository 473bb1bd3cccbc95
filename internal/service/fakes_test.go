package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"deadline-bot/internal/model"
)

var errFake = errors.New("fake failure")

type fakeDeadlineRepo struct {
	mu       sync.Mutex
	shared   []model.Deadline
	personal map[string][]model.Deadline
	failLoad bool
	failSave bool
	saves    int
}

func newFakeDeadlineRepo() *fakeDeadlineRepo {
	return &fakeDeadlineRepo{personal: map[string][]model.Deadline{}}
}

func (r *fakeDeadlineRepo) LoadShared(context.Context) ([]model.Deadline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad {
		return nil, errFake
	}
	return append([]model.Deadline(nil), r.shared...), nil
}

func (r *fakeDeadlineRepo) LoadPersonal(context.Context) (map[string][]model.Deadline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad {
		return nil, errFake
	}
	out := make(map[string][]model.Deadline, len(r.personal))
	for k, v := range r.personal {
		out[k] = append([]model.Deadline(nil), v...)
	}
	return out, nil
}

func (r *fakeDeadlineRepo) ReplaceShared(_ context.Context, items []model.Deadline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failSave {
		return errFake
	}
	r.shared = append([]model.Deadline(nil), items...)
	return nil
}

func (r *fakeDeadlineRepo) ReplacePersonal(_ context.Context, userID string, items []model.Deadline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failSave {
		return errFake
	}
	if len(items) == 0 {
		delete(r.personal, userID)
		return nil
	}
	r.personal[userID] = append([]model.Deadline(nil), items...)
	return nil
}

type fakeReminderRepo struct {
	mu       sync.Mutex
	rows     map[model.Scope]map[string]time.Time
	inserts  int
	failSave bool
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{rows: map[model.Scope]map[string]time.Time{}}
}

func (r *fakeReminderRepo) Load(_ context.Context, scope model.Scope) (map[string]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]time.Time{}
	for k, v := range r.rows[scope] {
		out[k] = v
	}
	return out, nil
}

func (r *fakeReminderRepo) Insert(_ context.Context, scope model.Scope, key string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.failSave {
		return errFake
	}
	if r.rows[scope] == nil {
		r.rows[scope] = map[string]time.Time{}
	}
	if _, ok := r.rows[scope][key]; !ok {
		r.rows[scope][key] = sentAt
	}
	return nil
}

type fakeRegistry struct {
	ids []string
	err error
}

func (r *fakeRegistry) ListIDs(context.Context) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]string(nil), r.ids...), nil
}

type sentMessage struct {
	To   string
	Text string
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo map[string]bool
}

func (n *fakeNotifier) SendText(_ context.Context, recipient, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failTo[recipient] {
		return errFake
	}
	n.sent = append(n.sent, sentMessage{To: recipient, Text: text})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type fakeActionRepo struct {
	last map[string]time.Time
}

func (r *fakeActionRepo) LastAt(_ context.Context, userID, action string) (time.Time, bool, error) {
	at, ok := r.last[userID+"/"+action]
	return at, ok, nil
}

func (r *fakeActionRepo) Touch(_ context.Context, userID, action string, at time.Time) error {
	if r.last == nil {
		r.last = map[string]time.Time{}
	}
	r.last[userID+"/"+action] = at
	return nil
}
