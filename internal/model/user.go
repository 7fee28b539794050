package model

import "time"

// User is an account that owns todos and collaborates on others'.
// TelegramChatID is set by the bot linking flow and is the destination
// for reminder notifications; users without it are never notified.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	FullName       string    `json:"fullName"`
	PasswordHash   string    `json:"-"`
	APIToken       string    `gorm:"uniqueIndex" json:"-"`
	TelegramChatID *string   `gorm:"index" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
