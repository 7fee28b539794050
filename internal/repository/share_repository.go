package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collab-todo/internal/model"
)

// ShareRepository manages per-(todo,user) access grants.
type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Upsert writes a share keyed by (todo_id, user_id). A concurrent request
// for the same pair resolves through the unique index rather than a
// read-then-write race.
func (r *ShareRepository) Upsert(ctx context.Context, share *model.Share) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "todo_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_edit", "status", "updated_at"}),
	}).Create(share).Error
	if err != nil {
		return fmt.Errorf("upsert share: %w", err)
	}
	return nil
}

func (r *ShareRepository) FindByKey(ctx context.Context, todoID, userID uint) (*model.Share, error) {
	var share model.Share
	if err := r.db.WithContext(ctx).
		Where("todo_id = ? AND user_id = ?", todoID, userID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// ListAcceptedByTodo returns every accepted share on a todo.
func (r *ShareRepository) ListAcceptedByTodo(ctx context.Context, todoID uint) ([]model.Share, error) {
	var shares []model.Share
	if err := r.db.WithContext(ctx).
		Where("todo_id = ? AND status = ?", todoID, model.ShareStatusAccepted).
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

// SetEditForTodo propagates a new edit flag to every share on the todo.
func (r *ShareRepository) SetEditForTodo(ctx context.Context, todoID uint, canEdit bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Share{}).
		Where("todo_id = ?", todoID).
		Update("can_edit", canEdit).Error; err != nil {
		return fmt.Errorf("propagate share permission: %w", err)
	}
	return nil
}
