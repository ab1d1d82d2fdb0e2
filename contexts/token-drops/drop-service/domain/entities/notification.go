package entities

import "time"

// Notification is one inbox record. Read is monotonic: it flips to true once
// and never resets.
type Notification struct {
	NotificationID string
	UserID         string
	DropID         string
	Title          string
	Message        string
	CreatedAt      time.Time
	Read           bool
}
