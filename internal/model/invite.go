package model

import "time"

// Invite is a reusable join token for a todo. Each todo has at most one;
// it is created lazily and then updated in place.
type Invite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TodoID     uint      `gorm:"uniqueIndex" json:"todoId"`
	Token      string    `gorm:"uniqueIndex" json:"token"`
	CanEdit    bool      `gorm:"default:false" json:"canEdit"`
	UsageCount int       `gorm:"default:0" json:"usageCount"`
	UsageLimit int       `json:"usageLimit"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Exhausted reports whether the invite has reached its usage limit.
func (i *Invite) Exhausted() bool {
	return i.UsageCount >= i.UsageLimit
}
