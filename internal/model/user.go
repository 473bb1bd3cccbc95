package model

import "time"

// User is a Telegram account that has talked to the bot. Every user
// receives shared deadline reminders and hang-out invitations.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
