package models

import "time"

// Reminder is a scheduled medication notification for a portal user.
type Reminder struct {
	ID         string
	Owner      string
	Medication string
	Dosage     string
	DueAt      time.Time
	Sent       bool
	CreatedAt  time.Time
}
