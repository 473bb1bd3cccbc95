package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"deadline-bot/internal/model"
)

var (
	ErrInvalidDate      = errors.New("invalid date, expected DD.MM.YYYY")
	ErrIndexOutOfRange  = errors.New("deadline index out of range")
	errPersonalNoUserID = errors.New("user id is required")
)

// DeadlineRepository persists whole deadline lists.
type DeadlineRepository interface {
	LoadShared(ctx context.Context) ([]model.Deadline, error)
	LoadPersonal(ctx context.Context) (map[string][]model.Deadline, error)
	ReplaceShared(ctx context.Context, items []model.Deadline) error
	ReplacePersonal(ctx context.Context, userID string, items []model.Deadline) error
}

// PersonalList is one user's deadlines in stored order.
type PersonalList struct {
	UserID    string
	Deadlines []model.Deadline
}

// DeadlineStore keeps shared and personal deadlines in memory and writes every
// change through to the repository before returning. A failed write is logged
// and the in-memory state keeps serving reads.
type DeadlineStore struct {
	repo DeadlineRepository
	log  *zap.Logger
	loc  *time.Location
	now  func() time.Time

	mu       sync.RWMutex
	shared   []model.Deadline
	personal map[string][]model.Deadline
}

// NewDeadlineStore loads both collections. A load failure leaves the
// affected collection empty instead of failing startup.
func NewDeadlineStore(ctx context.Context, repo DeadlineRepository, loc *time.Location, log *zap.Logger) *DeadlineStore {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &DeadlineStore{
		repo:     repo,
		log:      log.Named("deadlines"),
		loc:      loc,
		now:      time.Now,
		personal: make(map[string][]model.Deadline),
	}

	shared, err := repo.LoadShared(ctx)
	if err != nil {
		s.log.Error("load shared deadlines failed, starting empty", zap.Error(err))
	} else {
		s.shared = shared
	}

	personal, err := repo.LoadPersonal(ctx)
	if err != nil {
		s.log.Error("load personal deadlines failed, starting empty", zap.Error(err))
	} else if personal != nil {
		s.personal = personal
	}

	s.log.Info("deadlines loaded", zap.Int("shared", len(s.shared)), zap.Int("personal_users", len(s.personal)))
	return s
}

// ParseDueDate parses a DD.MM.YYYY date as midnight in loc.
func ParseDueDate(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(model.DateLayout, text, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	return t, nil
}

func (s *DeadlineStore) newDeadline(scope model.Scope, ownerID, subject, task, dateText string) (model.Deadline, error) {
	if _, err := ParseDueDate(dateText, s.loc); err != nil {
		return model.Deadline{}, err
	}
	return model.Deadline{
		Scope:     scope,
		OwnerID:   ownerID,
		Subject:   subject,
		Task:      task,
		DueDate:   dateText,
		CreatedAt: s.now(),
	}, nil
}

// AddShared appends a deadline visible to everyone.
func (s *DeadlineStore) AddShared(ctx context.Context, subject, task, dateText string) (model.Deadline, error) {
	d, err := s.newDeadline(model.ScopeShared, "", subject, task, dateText)
	if err != nil {
		return model.Deadline{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d.Position = len(s.shared)
	s.shared = append(s.shared, d)
	s.persistSharedLocked(ctx)
	return d, nil
}

// AddPersonal appends a deadline to userID's own list.
func (s *DeadlineStore) AddPersonal(ctx context.Context, userID, subject, task, dateText string) (model.Deadline, error) {
	if userID == "" {
		return model.Deadline{}, errPersonalNoUserID
	}
	d, err := s.newDeadline(model.ScopePersonal, userID, subject, task, dateText)
	if err != nil {
		return model.Deadline{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d.Position = len(s.personal[userID])
	s.personal[userID] = append(s.personal[userID], d)
	s.persistPersonalLocked(ctx, userID)
	return d, nil
}

func (s *DeadlineStore) ListShared() []model.Deadline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDeadlines(s.shared)
}

func (s *DeadlineStore) ListPersonal(userID string) []model.Deadline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDeadlines(s.personal[userID])
}

// PersonalSnapshot returns every personal list ordered by user id.
func (s *DeadlineStore) PersonalSnapshot() []PersonalList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.personal))
	for userID, items := range s.personal {
		if len(items) > 0 {
			users = append(users, userID)
		}
	}
	sort.Strings(users)

	out := make([]PersonalList, 0, len(users))
	for _, userID := range users {
		out = append(out, PersonalList{UserID: userID, Deadlines: cloneDeadlines(s.personal[userID])})
	}
	return out
}

// RemoveShared deletes the shared deadline at the 0-based index.
// Later deadlines shift down by one.
func (s *DeadlineStore) RemoveShared(ctx context.Context, index int) (model.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, removed, err := removeAt(s.shared, index)
	if err != nil {
		return model.Deadline{}, err
	}
	s.shared = items
	s.persistSharedLocked(ctx)
	return removed, nil
}

// RemovePersonal deletes userID's deadline at the 0-based index.
func (s *DeadlineStore) RemovePersonal(ctx context.Context, userID string, index int) (model.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, removed, err := removeAt(s.personal[userID], index)
	if err != nil {
		return model.Deadline{}, err
	}
	if len(items) == 0 {
		delete(s.personal, userID)
	} else {
		s.personal[userID] = items
	}
	s.persistPersonalLocked(ctx, userID)
	return removed, nil
}

func (s *DeadlineStore) persistSharedLocked(ctx context.Context) {
	if err := s.repo.ReplaceShared(ctx, cloneDeadlines(s.shared)); err != nil {
		s.log.Error("persist shared deadlines failed", zap.Error(err), zap.Int("count", len(s.shared)))
	}
}

func (s *DeadlineStore) persistPersonalLocked(ctx context.Context, userID string) {
	items := cloneDeadlines(s.personal[userID])
	if err := s.repo.ReplacePersonal(ctx, userID, items); err != nil {
		s.log.Error("persist personal deadlines failed", zap.Error(err), zap.String("user", userID), zap.Int("count", len(items)))
	}
}

func removeAt(items []model.Deadline, index int) ([]model.Deadline, model.Deadline, error) {
	if index < 0 || index >= len(items) {
		return items, model.Deadline{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(items))
	}
	removed := items[index]
	out := make([]model.Deadline, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	for i := range out {
		out[i].Position = i
	}
	return out, removed, nil
}

func cloneDeadlines(items []model.Deadline) []model.Deadline {
	if len(items) == 0 {
		return nil
	}
	out := make([]model.Deadline, len(items))
	copy(out, items)
	return out
}
