package model

import "time"

// Share statuses. Only accepted shares grant access.
const (
	ShareStatusPending  = "PENDING"
	ShareStatusAccepted = "ACCEPTED"
)

// Share grants a user access to somebody else's todo. The (TodoID, UserID)
// pair is unique; all writes go through an upsert on that key.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TodoID    uint      `gorm:"uniqueIndex:idx_share_todo_user" json:"todoId"`
	UserID    uint      `gorm:"uniqueIndex:idx_share_todo_user" json:"userId"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CanEdit   bool      `gorm:"default:false" json:"canEdit"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
