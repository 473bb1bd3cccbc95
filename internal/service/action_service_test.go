package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActionFixture() (*ActionService, *fakeActionRepo, *fakeRegistry, *fakeNotifier) {
	repo := &fakeActionRepo{}
	users := &fakeRegistry{ids: []string{"1", "2", "3"}}
	notifier := &fakeNotifier{failTo: map[string]bool{}}
	return NewActionService(repo, users, notifier, 7*24*time.Hour, nil), repo, users, notifier
}

func TestActionByLabel(t *testing.T) {
	a, ok := ActionByLabel("🎥 Позвать в кино")
	require.True(t, ok)
	assert.Equal(t, "cinema", a.Key)

	_, ok = ActionByLabel("Позвать в кино")
	assert.False(t, ok)
}

func TestActionService_CallSkipsCaller(t *testing.T) {
	svc, _, _, notifier := newActionFixture()
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)

	n, err := svc.Call(context.Background(), "2", "Alice", Actions[0], now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs := notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].To)
	assert.Equal(t, "3", msgs[1].To)
	assert.Equal(t, "Alice предлагает пойти пить пиво! Кто присоединится?", msgs[0].Text)
}

func TestActionService_Cooldown(t *testing.T) {
	svc, _, _, notifier := newActionFixture()
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	beer, cinema := Actions[0], Actions[2]

	_, err := svc.Call(ctx, "1", "Bob", beer, now)
	require.NoError(t, err)

	_, err = svc.Call(ctx, "1", "Bob", beer, now.Add(6*24*time.Hour))
	assert.ErrorIs(t, err, ErrActionTooSoon)

	// Cooldowns are tracked per action and per user.
	_, err = svc.Call(ctx, "1", "Bob", cinema, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Call(ctx, "2", "Carol", beer, now.Add(time.Hour))
	require.NoError(t, err)

	ok, err := svc.CanPerform(ctx, "1", beer, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, notifier.messages(), 6)
}

func TestActionService_PartialDelivery(t *testing.T) {
	svc, repo, _, notifier := newActionFixture()
	notifier.failTo["3"] = true
	now := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)

	n, err := svc.Call(context.Background(), "1", "Bob", Actions[3], now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, now, repo.last["1/walk"])
}

func TestActionService_AudienceError(t *testing.T) {
	svc, repo, users, _ := newActionFixture()
	users.err = errFake

	_, err := svc.Call(context.Background(), "1", "Bob", Actions[1], time.Now())
	assert.ErrorIs(t, err, errFake)
	assert.Empty(t, repo.last)
}
