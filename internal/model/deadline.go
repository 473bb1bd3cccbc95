package model

import "time"

// Scope tells whether a deadline or reminder belongs to everyone or to a single user.
type Scope string

const (
	ScopeShared   Scope = "shared"
	ScopePersonal Scope = "personal"
)

// DateLayout is the only accepted due date format (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// Deadline is a single dated work item. DueDate keeps the text exactly as entered,
// so a record that no longer parses can still be listed and skipped by the scanner.
type Deadline struct {
	ID        uint   `gorm:"primaryKey"`
	Scope     Scope  `gorm:"index:idx_deadline_owner,priority:1;size:16"`
	OwnerID   string `gorm:"index:idx_deadline_owner,priority:2"`
	Position  int
	Subject   string
	Task      string
	DueDate   string
	CreatedAt time.Time
}
