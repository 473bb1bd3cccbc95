package model

import "time"

// SentReminder is a ledger entry: the reminder identified by Key was already sent.
type SentReminder struct {
	Scope  Scope  `gorm:"primaryKey;size:16"`
	Key    string `gorm:"primaryKey"`
	SentAt time.Time
}
