// Package schedule decides which calendar days a habit is due on.
package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// IsScheduled reports whether the habit is due on the given day. It is a pure
// function of the habit's schedule rule and active range; days outside
// [StartDate, EndDate] are never scheduled.
//
// Quota rules (times-per-week, times-per-month) make every day in range
// eligible. The quota is not tracked across days.
func IsScheduled(habit models.Habit, day time.Time) bool {
	if !InRange(habit, day) {
		return false
	}

	rule := habit.Schedule
	switch rule.Type {
	case constants.ScheduleDaily:
		return true
	case constants.ScheduleWeekly:
		return slices.Contains(rule.Weekdays, day.Weekday())
	case constants.ScheduleWeekdays:
		wd := day.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case constants.ScheduleTimesPerWeek, constants.ScheduleTimesPerMonth:
		return rule.Count > 0
	case constants.ScheduleEveryNDays:
		if rule.Interval <= 0 || habit.StartDate == "" {
			return false
		}
		start, err := utils.ParseDateKey(habit.StartDate, day.Location())
		if err != nil {
			return false
		}
		return utils.DaysBetween(start, day)%rule.Interval == 0
	default:
		return false
	}
}

// InRange reports whether day falls inside the habit's active date range.
// An empty StartDate or EndDate leaves that side unbounded.
func InRange(habit models.Habit, day time.Time) bool {
	key := day.Format(constants.DateFormat)
	if habit.StartDate != "" && key < habit.StartDate {
		return false
	}
	if habit.EndDate != "" && key > habit.EndDate {
		return false
	}
	return true
}

// Describe formats a schedule rule into a human-readable string
func Describe(rule models.Schedule) string {
	switch rule.Type {
	case constants.ScheduleDaily:
		return "daily"
	case constants.ScheduleWeekly:
		if len(rule.Weekdays) == 0 {
			return "weekly"
		}
		var days []string
		for _, wd := range rule.Weekdays {
			days = append(days, wd.String()[:3])
		}
		return fmt.Sprintf("weekly on %s", strings.Join(days, ","))
	case constants.ScheduleWeekdays:
		return "weekdays"
	case constants.ScheduleTimesPerWeek:
		return fmt.Sprintf("%d times per week", rule.Count)
	case constants.ScheduleTimesPerMonth:
		return fmt.Sprintf("%d times per month", rule.Count)
	case constants.ScheduleEveryNDays:
		return fmt.Sprintf("every %d days", rule.Interval)
	default:
		return "unknown"
	}
}
