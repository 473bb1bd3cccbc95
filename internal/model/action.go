package model

import "time"

// ActionLog remembers when a user last called everyone to hang out.
type ActionLog struct {
	UserID string `gorm:"primaryKey"`
	Action string `gorm:"primaryKey"`
	LastAt time.Time
}
