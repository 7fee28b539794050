package model

import (
	"strconv"
	"strings"
	"time"
)

// Todo is a single task, possibly shared with other users.
//
// RemindAt carries a full instant for one-time reminders; for repeatable
// todos its time-of-day is the daily reminder time and RepeatDays holds the
// weekdays on which a notification actually fires (1=Mon..7=Sun, comma
// separated). Notified marks the current occurrence as already dispatched
// and is cleared whenever RemindAt moves.
type Todo struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OwnerID      uint       `gorm:"index" json:"ownerId"`
	Owner        User       `gorm:"foreignKey:OwnerID" json:"owner"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	IsCompleted  bool       `gorm:"default:false" json:"isCompleted"`
	RemindAt     *time.Time `json:"remindAt"`
	IsRepeatable bool       `gorm:"default:false" json:"isRepeatable"`
	RepeatDays   string     `json:"repeatDays"` // e.g. "1,3,5"
	Notified     bool       `gorm:"default:false" json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Shares       []Share    `gorm:"foreignKey:TodoID" json:"shares"`
}

// RepeatDaySet parses RepeatDays into a set of weekday numbers.
// Malformed entries are dropped.
func (t *Todo) RepeatDaySet() map[int]bool {
	set := make(map[int]bool)
	for _, part := range strings.Split(t.RepeatDays, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || day < 1 || day > 7 {
			continue
		}
		set[day] = true
	}
	return set
}

// RepeatsOn reports whether the todo repeats on the given weekday number.
func (t *Todo) RepeatsOn(day int) bool {
	return t.RepeatDaySet()[day]
}

// WeekdayNumber maps a time.Weekday to the 1=Mon..7=Sun numbering used in
// RepeatDays. Sunday is 7, never 0.
func WeekdayNumber(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
