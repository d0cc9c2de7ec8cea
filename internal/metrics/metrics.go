// Package metrics derives streaks and completion rates from a habit's ledger.
// Nothing here is ever persisted; every value is computed on read.
package metrics

import (
	"time"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/schedule"
	"github.com/julianstephens/tally/internal/utils"
)

// Completions is a read-only, date-keyed view of one habit's entries.
type Completions interface {
	IsCompleted(dateKey string) bool
	// Earliest returns the smallest date key with an entry, or "" if none
	Earliest() string
}

// Streak counts consecutive completed scheduled days ending at today, walking
// backwards and stopping at the first scheduled day that is not completed.
// Unscheduled days are skipped: they neither extend nor break the streak.
func Streak(habit models.Habit, c Completions, today time.Time, loc *time.Location) int {
	floor := lowerBound(habit, c)
	if floor == "" {
		return 0
	}

	streak := 0
	for day := utils.StartOfDay(today, loc); utils.DateKey(day, loc) >= floor; day = utils.AddDays(day, -1) {
		if !schedule.IsScheduled(habit, day) {
			continue
		}
		if !c.IsCompleted(utils.DateKey(day, loc)) {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive completed scheduled
// days in the history up to and including today.
func LongestStreak(habit models.Habit, c Completions, today time.Time, loc *time.Location) int {
	floor := lowerBound(habit, c)
	if floor == "" {
		return 0
	}

	start, err := utils.ParseDateKey(floor, loc)
	if err != nil {
		return 0
	}
	end := utils.StartOfDay(today, loc)

	longest, run := 0, 0
	for day := start; !day.After(end); day = utils.AddDays(day, 1) {
		if !schedule.IsScheduled(habit, day) {
			continue
		}
		if c.IsCompleted(utils.DateKey(day, loc)) {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

// Summary is the completion rate of a habit over a period
type Summary struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	ScheduledDays int     `json:"scheduled_days"`
	CompletedDays int     `json:"completed_days"`
	Percentage    float64 `json:"percentage"` // 0..100
}

// CompletionPercentage computes completedScheduledDays / totalScheduledDays
// over [from, to]. A period with no scheduled days yields 0.
func CompletionPercentage(habit models.Habit, c Completions, from, to time.Time, loc *time.Location) Summary {
	start := utils.StartOfDay(from, loc)
	end := utils.StartOfDay(to, loc)
	s := Summary{From: utils.DateKey(start, loc), To: utils.DateKey(end, loc)}

	for day := start; !day.After(end); day = utils.AddDays(day, 1) {
		if !schedule.IsScheduled(habit, day) {
			continue
		}
		s.ScheduledDays++
		if c.IsCompleted(utils.DateKey(day, loc)) {
			s.CompletedDays++
		}
	}

	if s.ScheduledDays > 0 {
		s.Percentage = float64(s.CompletedDays) / float64(s.ScheduledDays) * 100
	}
	return s
}

// lowerBound returns the first date key worth walking to: the later of the
// habit's start date and its earliest entry. It is "" when there are no entries.
func lowerBound(habit models.Habit, c Completions) string {
	floor := c.Earliest()
	if floor == "" {
		return ""
	}
	if habit.StartDate > floor {
		floor = habit.StartDate
	}
	return floor
}
