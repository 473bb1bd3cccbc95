package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"deadline-bot/internal/model"
)

// DeadlineRepository persists shared and personal deadline lists.
// Lists are always written whole, so stored positions match list order.
type DeadlineRepository struct {
	db *gorm.DB
}

func NewDeadlineRepository(db *gorm.DB) *DeadlineRepository {
	return &DeadlineRepository{db: db}
}

func (r *DeadlineRepository) LoadShared(ctx context.Context) ([]model.Deadline, error) {
	var items []model.Deadline
	if err := r.db.WithContext(ctx).Where("scope = ?", model.ScopeShared).
		Order("position ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load shared deadlines: %w", err)
	}
	return items, nil
}

// LoadPersonal returns every personal list keyed by owner.
func (r *DeadlineRepository) LoadPersonal(ctx context.Context) (map[string][]model.Deadline, error) {
	var items []model.Deadline
	if err := r.db.WithContext(ctx).Where("scope = ?", model.ScopePersonal).
		Order("owner_id ASC, position ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load personal deadlines: %w", err)
	}
	out := make(map[string][]model.Deadline)
	for _, item := range items {
		out[item.OwnerID] = append(out[item.OwnerID], item)
	}
	return out, nil
}

func (r *DeadlineRepository) ReplaceShared(ctx context.Context, items []model.Deadline) error {
	return r.replace(ctx, model.ScopeShared, "", items)
}

func (r *DeadlineRepository) ReplacePersonal(ctx context.Context, userID string, items []model.Deadline) error {
	return r.replace(ctx, model.ScopePersonal, userID, items)
}

func (r *DeadlineRepository) replace(ctx context.Context, scope model.Scope, ownerID string, items []model.Deadline) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope = ? AND owner_id = ?", scope, ownerID).
			Delete(&model.Deadline{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]model.Deadline, len(items))
		for i, item := range items {
			rows[i] = model.Deadline{
				Scope:     scope,
				OwnerID:   ownerID,
				Position:  i,
				Subject:   item.Subject,
				Task:      item.Task,
				DueDate:   item.DueDate,
				CreatedAt: item.CreatedAt,
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("replace %s deadlines: %w", scope, err)
	}
	return nil
}
