package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ErrActionTooSoon = errors.New("action used too recently")

// Action is a "call everyone to hang out" invitation.
type Action struct {
	Key         string
	Label       string
	Description string
}

// Actions lists the invitations in menu order.
var Actions = []Action{
	{Key: "beer", Label: "🍺 Позвать пить пиво", Description: "пойти пить пиво"},
	{Key: "board_games", Label: "🎲 Позвать в настолки", Description: "поиграть в настолки"},
	{Key: "cinema", Label: "🎥 Позвать в кино", Description: "сходить в кино"},
	{Key: "walk", Label: "🚶 Позвать гулять", Description: "пойти гулять"},
}

func ActionByLabel(label string) (Action, bool) {
	for _, a := range Actions {
		if a.Label == label {
			return a, true
		}
	}
	return Action{}, false
}

// ActionRepository keeps the last use of each action per user.
type ActionRepository interface {
	LastAt(ctx context.Context, userID, action string) (time.Time, bool, error)
	Touch(ctx context.Context, userID, action string, at time.Time) error
}

// ActionService broadcasts invitations, at most one per action per cooldown.
type ActionService struct {
	repo     ActionRepository
	users    UserRegistry
	notifier Notifier
	cooldown time.Duration
	log      *zap.Logger
}

func NewActionService(repo ActionRepository, users UserRegistry, notifier Notifier, cooldown time.Duration, log *zap.Logger) *ActionService {
	if cooldown <= 0 {
		cooldown = 7 * 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ActionService{repo: repo, users: users, notifier: notifier, cooldown: cooldown, log: log.Named("actions")}
}

// CanPerform reports whether userID may trigger action at now.
func (s *ActionService) CanPerform(ctx context.Context, userID string, action Action, now time.Time) (bool, error) {
	last, ok, err := s.repo.LastAt(ctx, userID, action.Key)
	if err != nil {
		return false, err
	}
	if ok && now.Sub(last) < s.cooldown {
		return false, nil
	}
	return true, nil
}

// Call sends the invitation from userID to every other registered user and
// returns how many recipients got it.
func (s *ActionService) Call(ctx context.Context, userID, name string, action Action, now time.Time) (int, error) {
	ok, err := s.CanPerform(ctx, userID, action, now)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrActionTooSoon
	}

	audience, err := s.users.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("load audience: %w", err)
	}

	text := fmt.Sprintf("%s предлагает %s! Кто присоединится?", name, action.Description)
	delivered := 0
	for _, uid := range audience {
		if uid == userID {
			continue
		}
		if err := s.notifier.SendText(ctx, uid, text); err != nil {
			s.log.Error("send invitation failed", zap.Error(err), zap.String("user", uid), zap.String("action", action.Key))
			continue
		}
		delivered++
	}

	if err := s.repo.Touch(ctx, userID, action.Key, now); err != nil {
		s.log.Error("persist action time failed", zap.Error(err), zap.String("user", userID), zap.String("action", action.Key))
	}
	s.log.Info("invitation sent", zap.String("user", userID), zap.String("action", action.Key), zap.Int("delivered", delivered))
	return delivered, nil
}
