package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"collab-todo/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByAPIToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("api_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkTelegramChat stores the chat a user connected through the bot.
// Relinking from a different chat overwrites the previous link.
func (r *UserRepository) LinkTelegramChat(ctx context.Context, userID uint, chatID string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("telegram_chat_id", chatID)
	if res.Error != nil {
		return fmt.Errorf("link telegram chat: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListLinked returns every user with a connected Telegram chat.
func (r *UserRepository) ListLinked(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("telegram_chat_id IS NOT NULL AND telegram_chat_id <> ''").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
