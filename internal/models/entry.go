package models

import "time"

// CompletionEntry is one day's progress record for one habit.
// (OwnerID, HabitID, DateKey) is unique.
type CompletionEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	HabitID   string    `json:"habit_id"`
	DateKey   string    `json:"date_key"` // YYYY-MM-DD in the device time zone
	Progress  int       `json:"progress"`
	Completed bool      `json:"completed"`
	NeedsSync bool      `json:"needs_sync"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryKey identifies a completion entry
type EntryKey struct {
	OwnerID string
	HabitID string
	DateKey string
}

// Key returns the composite identity of the entry
func (e CompletionEntry) Key() EntryKey {
	return EntryKey{OwnerID: e.OwnerID, HabitID: e.HabitID, DateKey: e.DateKey}
}
