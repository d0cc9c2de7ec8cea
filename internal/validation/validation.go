package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictInvalidHabit       ConflictType = "invalid_habit"
	ConflictOrphanEntry        ConflictType = "orphan_entry"
)

// Conflict represents a detected problem in stored habits
type Conflict struct {
	Type        ConflictType
	Description string
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// ValidateHabit checks a single habit definition. It returns an
// errors.ErrInvalidInput listing every problem found, or nil.
func ValidateHabit(habit models.Habit) error {
	problems := habitProblems(habit)
	if len(problems) == 0 {
		return nil
	}
	return errors.Invalid("habit %q: %s", habit.Name, strings.Join(problems, "; "))
}

func habitProblems(habit models.Habit) []string {
	var problems []string

	if strings.TrimSpace(habit.Name) == "" {
		problems = append(problems, "name is required")
	}
	if habit.OwnerID == "" {
		problems = append(problems, "owner is required")
	}

	switch habit.Kind {
	case constants.HabitKindFormation:
		if habit.GoalAmount < 1 {
			problems = append(problems, fmt.Sprintf("goal amount must be at least 1, got %d", habit.GoalAmount))
		}
	case constants.HabitKindBreaking:
		if habit.Target < 0 {
			problems = append(problems, fmt.Sprintf("target must be >= 0, got %d", habit.Target))
		}
		if habit.Baseline < 0 {
			problems = append(problems, fmt.Sprintf("baseline must be >= 0, got %d", habit.Baseline))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown kind %q", habit.Kind))
	}

	for wd, amount := range habit.GoalByWeekday {
		if amount < 1 {
			problems = append(problems, fmt.Sprintf("goal for %s must be at least 1, got %d", wd, amount))
		}
	}

	problems = append(problems, scheduleProblems(habit.Schedule)...)

	if !utils.ValidateDateKey(habit.StartDate) {
		problems = append(problems, fmt.Sprintf("invalid start date %q (expected YYYY-MM-DD)", habit.StartDate))
	}
	if habit.EndDate != "" {
		if !utils.ValidateDateKey(habit.EndDate) {
			problems = append(problems, fmt.Sprintf("invalid end date %q (expected YYYY-MM-DD)", habit.EndDate))
		} else if habit.EndDate < habit.StartDate {
			problems = append(problems, fmt.Sprintf("end date %s is before start date %s", habit.EndDate, habit.StartDate))
		}
	}

	return problems
}

func scheduleProblems(rule models.Schedule) []string {
	switch rule.Type {
	case constants.ScheduleDaily, constants.ScheduleWeekdays:
		return nil
	case constants.ScheduleWeekly:
		if len(rule.Weekdays) == 0 {
			return []string{"weekly schedule needs at least one weekday"}
		}
		for _, wd := range rule.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return []string{fmt.Sprintf("invalid weekday %d", wd)}
			}
		}
		return nil
	case constants.ScheduleTimesPerWeek:
		if rule.Count < 1 || rule.Count > 7 {
			return []string{fmt.Sprintf("times per week must be between 1 and 7, got %d", rule.Count)}
		}
		return nil
	case constants.ScheduleTimesPerMonth:
		if rule.Count < 1 || rule.Count > 31 {
			return []string{fmt.Sprintf("times per month must be between 1 and 31, got %d", rule.Count)}
		}
		return nil
	case constants.ScheduleEveryNDays:
		if rule.Interval < 1 {
			return []string{fmt.Sprintf("interval must be at least 1 day, got %d", rule.Interval)}
		}
		return nil
	default:
		return []string{fmt.Sprintf("unknown schedule type %q", rule.Type)}
	}
}

// ValidateHabits checks stored habits for problems that single-habit
// validation cannot see, such as duplicate names for one owner.
// Deleted habits are ignored.
func ValidateHabits(habits []models.Habit) ValidationResult {
	var result ValidationResult

	byName := make(map[string][]string)
	for _, h := range habits {
		if h.IsDeleted() {
			continue
		}
		key := h.OwnerID + "\x00" + strings.ToLower(h.Name)
		byName[key] = append(byName[key], h.ID)

		if problems := habitProblems(h); len(problems) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidHabit,
				Description: fmt.Sprintf("habit %q: %s", h.Name, strings.Join(problems, "; ")),
				HabitIDs:    []string{h.ID},
			})
		}
	}

	for _, h := range habits {
		key := h.OwnerID + "\x00" + strings.ToLower(h.Name)
		ids, ok := byName[key]
		if !ok || len(ids) < 2 {
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("%d habits named %q", len(ids), h.Name),
			HabitIDs:    ids,
		})
		delete(byName, key)
	}

	return result
}

// ValidateEntries reports entries whose habit does not exist
func ValidateEntries(entries []models.CompletionEntry, habits []models.Habit) ValidationResult {
	var result ValidationResult

	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}
	orphans := make(map[string]int)
	for _, e := range entries {
		if !known[e.HabitID] {
			orphans[e.HabitID]++
		}
	}
	ids := make([]string, 0, len(orphans))
	for habitID := range orphans {
		ids = append(ids, habitID)
	}
	slices.Sort(ids)
	for _, habitID := range ids {
		n := orphans[habitID]
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictOrphanEntry,
			Description: fmt.Sprintf("%d entries reference missing habit %s", n, habitID),
			HabitIDs:    []string{habitID},
		})
	}

	return result
}
