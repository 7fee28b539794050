package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collab-todo/internal/model"
)

// TodoRepository handles CRUD for todos.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id uint) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Preload("Owner").Preload("Shares").First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListVisible returns todos the user owns plus todos shared with them
// through an accepted share, newest first.
func (r *TodoRepository) ListVisible(ctx context.Context, userID uint) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).
		Preload("Owner").Preload("Shares").Preload("Shares.User").
		Where("owner_id = ? OR id IN (?)", userID,
			r.db.Model(&model.Share{}).Select("todo_id").
				Where("user_id = ? AND status = ?", userID, model.ShareStatusAccepted)).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// FindDueReminders returns todos whose reminder instant has passed, that are
// not completed, not yet notified for the current occurrence, and whose
// owner has a linked Telegram chat.
func (r *TodoRepository) FindDueReminders(ctx context.Context, now time.Time) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = todos.owner_id").
		Where("todos.remind_at IS NOT NULL AND todos.remind_at <= ?", now).
		Where("todos.is_completed = ?", false).
		Where("todos.notified = ?", false).
		Where("users.telegram_chat_id IS NOT NULL AND users.telegram_chat_id <> ''").
		Preload("Owner").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// Updates applies the given column updates to a todo.
func (r *TodoRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.Todo{}).Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// UpdateReminderState writes back the scheduler's per-occurrence state.
func (r *TodoRepository) UpdateReminderState(ctx context.Context, id uint, remindAt *time.Time, notified bool) error {
	fields := map[string]interface{}{
		"remind_at": remindAt,
		"notified":  notified,
	}
	if err := r.db.WithContext(ctx).Model(&model.Todo{}).Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update reminder state: %w", err)
	}
	return nil
}

// Delete removes a todo together with its shares and invite.
func (r *TodoRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", id).Delete(&model.Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("todo_id = ?", id).Delete(&model.Invite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Todo{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
