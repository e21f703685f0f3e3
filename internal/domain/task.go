package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task priorities. Priority only matters for reminder timing when the user
// has not configured explicit offsets.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// DayToday is the sentinel day value meaning "whatever today is".
// An empty Day is treated the same way.
const DayToday = "today"

// Task is a single planner entry owned by a user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Day         string    `json:"day"`        // weekday name, "today", or empty
	StartTime   string    `json:"start_time"` // HH:MM local wall clock, optional
	Priority    string    `json:"priority"`   // high|medium|low
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizePriority maps unknown or empty priorities to medium.
func NormalizePriority(p string) string {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	}
	return PriorityMedium
}

// IsForDay reports whether the task applies to the given local date.
// Matches when Day equals the weekday name (case-insensitive), equals
// the "today" sentinel, or is empty.
func (t *Task) IsForDay(local time.Time) bool {
	return DayMatches(t.Day, local)
}
