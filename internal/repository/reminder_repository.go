package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"deadline-bot/internal/model"
)

// ReminderRepository stores the sent-reminder ledger.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Load returns the ledger of one scope as key -> sent time.
func (r *ReminderRepository) Load(ctx context.Context, scope model.Scope) (map[string]time.Time, error) {
	var rows []model.SentReminder
	if err := r.db.WithContext(ctx).Where("scope = ?", scope).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s reminders: %w", scope, err)
	}
	out := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		out[row.Key] = row.SentAt
	}
	return out, nil
}

// Insert records a sent reminder. An existing key keeps its original timestamp.
func (r *ReminderRepository) Insert(ctx context.Context, scope model.Scope, key string, sentAt time.Time) error {
	row := model.SentReminder{Scope: scope, Key: key, SentAt: sentAt}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("insert %s reminder %q: %w", scope, key, err)
	}
	return nil
}
