package entities

import "time"

// TokenDrop is an announced token distribution event. Only its creator may
// mutate it after creation.
type TokenDrop struct {
	DropID      string
	Name        string
	Description string
	TokenSymbol string
	Network     string
	TotalSupply float64
	Price       *float64
	StartTime   time.Time
	EndTime     *time.Time
	WebsiteURL  string
	ImageURL    string
	CreatedBy   string
	CreatedAt   time.Time
	IsActive    bool
}

// LiveAt reports whether the drop window covers the given instant.
func (d TokenDrop) LiveAt(now time.Time) bool {
	if d.StartTime.After(now) {
		return false
	}
	if d.EndTime != nil && !d.EndTime.After(now) {
		return false
	}
	return true
}

// UpcomingAt reports whether the drop window has not opened yet.
func (d TokenDrop) UpcomingAt(now time.Time) bool {
	return d.StartTime.After(now)
}
