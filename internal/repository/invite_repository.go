package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"collab-todo/internal/model"
)

// InviteRepository manages the single reusable invite per todo.
type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) FindByTodo(ctx context.Context, todoID uint) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("todo_id = ?", todoID).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// Create inserts a fresh invite. A duplicate token trips the unique index;
// callers regenerate and retry.
func (r *InviteRepository) Create(ctx context.Context, invite *model.Invite) error {
	if err := r.db.WithContext(ctx).Create(invite).Error; err != nil {
		return fmt.Errorf("create invite: %w", err)
	}
	return nil
}

// IsDuplicate reports whether err came from a uniqueness violation.
// SQLite surfaces these as plain constraint errors rather than
// gorm.ErrDuplicatedKey, so match on the message as well.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *InviteRepository) SetEdit(ctx context.Context, id uint, canEdit bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Invite{}).Where("id = ?", id).
		Update("can_edit", canEdit).Error; err != nil {
		return fmt.Errorf("update invite: %w", err)
	}
	return nil
}

// ConsumeUsage atomically claims one use of the invite. The limit check and
// the increment run in a single conditional update, so it reports false when
// the usage limit has already been reached.
func (r *InviteRepository) ConsumeUsage(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Invite{}).
		Where("id = ? AND usage_count < usage_limit", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("consume invite usage: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
