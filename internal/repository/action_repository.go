package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"deadline-bot/internal/model"
)

// ActionRepository keeps the last time each user triggered each action.
type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// LastAt returns the last trigger time; ok is false when the action was never used.
func (r *ActionRepository) LastAt(ctx context.Context, userID, action string) (time.Time, bool, error) {
	var row model.ActionLog
	err := r.db.WithContext(ctx).Where("user_id = ? AND action = ?", userID, action).First(&row).Error
	switch {
	case err == nil:
		return row.LastAt, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return time.Time{}, false, nil
	default:
		return time.Time{}, false, fmt.Errorf("find action: %w", err)
	}
}

func (r *ActionRepository) Touch(ctx context.Context, userID, action string, at time.Time) error {
	row := model.ActionLog{UserID: userID, Action: action, LastAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "action"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("touch action: %w", err)
	}
	return nil
}
