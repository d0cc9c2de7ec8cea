package models

import (
	"time"

	"github.com/julianstephens/tally/internal/constants"
)

// Schedule describes which calendar days a habit applies to
type Schedule struct {
	Type     constants.ScheduleType `json:"type"`
	Weekdays []time.Weekday         `json:"weekdays,omitempty"` // weekly
	Count    int                    `json:"count,omitempty"`    // times-per-week, times-per-month
	Interval int                    `json:"interval,omitempty"` // every-n-days
}

// Habit represents a user-defined recurring activity
type Habit struct {
	ID            string               `json:"id"`
	OwnerID       string               `json:"owner_id"`
	Name          string               `json:"name"`
	Kind          constants.HabitKind  `json:"kind"`
	Schedule      Schedule             `json:"schedule"`
	StartDate     string               `json:"start_date"`         // YYYY-MM-DD format
	EndDate       string               `json:"end_date,omitempty"` // YYYY-MM-DD format, empty means open-ended
	GoalAmount    int                  `json:"goal_amount"`
	GoalUnit      string               `json:"goal_unit,omitempty"`
	GoalByWeekday map[time.Weekday]int `json:"goal_by_weekday,omitempty"`
	Baseline      int                  `json:"baseline,omitempty"` // breaking only
	Target        int                  `json:"target,omitempty"`   // breaking only, usage ceiling
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	SyncedAt      *time.Time           `json:"synced_at,omitempty"`
	DeletedAt     *time.Time           `json:"deleted_at,omitempty"`
}

// GoalFor returns the goal amount the habit's progress is compared against on
// the given day. Breaking habits use their target ceiling.
func (h Habit) GoalFor(day time.Time) int {
	if h.Kind == constants.HabitKindBreaking {
		return h.Target
	}
	if amount, ok := h.GoalByWeekday[day.Weekday()]; ok {
		return amount
	}
	return h.GoalAmount
}

// Touch stamps an in-place edit and forces the habit to be re-synced.
func (h *Habit) Touch(now time.Time) {
	h.UpdatedAt = now
	h.SyncedAt = nil
}

// IsDeleted reports whether the habit carries a soft-delete tombstone
func (h Habit) IsDeleted() bool {
	return h.DeletedAt != nil
}
