package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/models"
)

// TimeFormat is used for every timestamp column. Nanosecond precision keeps
// UpdatedAt comparable when acknowledging synced entries.
const TimeFormat = time.RFC3339Nano

// FormatTime renders a timestamp for storage
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// FormatNullTime renders an optional timestamp as a nullable column value
func FormatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// ParseTime parses a stored timestamp; column names the field in errors
func ParseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// ParseNullTime parses an optional stored timestamp
func ParseNullTime(value sql.NullString, column string) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := ParseTime(value.String, column)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EncodeHabitJSON serializes the JSON-typed habit columns
func EncodeHabitJSON(h models.Habit) (schedule, goalByWeekday string, err error) {
	sched, err := json.Marshal(h.Schedule)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode schedule: %w", err)
	}
	goals := h.GoalByWeekday
	if goals == nil {
		goals = map[time.Weekday]int{}
	}
	byDay, err := json.Marshal(goals)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode goal_by_weekday: %w", err)
	}
	return string(sched), string(byDay), nil
}

// HabitRow holds the raw column values of a habits row
type HabitRow struct {
	Habit         models.Habit
	Schedule      string
	GoalByWeekday string
	CreatedAt     string
	UpdatedAt     string
	SyncedAt      sql.NullString
	DeletedAt     sql.NullString
}

// Dest returns scan targets in the order of HabitColumns
func (r *HabitRow) Dest() []interface{} {
	h := &r.Habit
	return []interface{}{
		&h.ID, &h.OwnerID, &h.Name, &h.Kind, &r.Schedule, &h.StartDate, &h.EndDate,
		&h.GoalAmount, &h.GoalUnit, &r.GoalByWeekday, &h.Baseline, &h.Target,
		&r.CreatedAt, &r.UpdatedAt, &r.SyncedAt, &r.DeletedAt,
	}
}

// HabitColumns is the select list matching HabitRow.Dest
const HabitColumns = `id, owner_id, name, kind, schedule, start_date, end_date,
	goal_amount, goal_unit, goal_by_weekday, baseline, target,
	created_at, updated_at, synced_at, deleted_at`

// Decode converts the raw columns into a habit
func (r *HabitRow) Decode() (models.Habit, error) {
	h := r.Habit
	if err := json.Unmarshal([]byte(r.Schedule), &h.Schedule); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse schedule for habit %s: %w", h.ID, err)
	}
	if r.GoalByWeekday != "" {
		if err := json.Unmarshal([]byte(r.GoalByWeekday), &h.GoalByWeekday); err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse goal_by_weekday for habit %s: %w", h.ID, err)
		}
	}
	if len(h.GoalByWeekday) == 0 {
		h.GoalByWeekday = nil
	}

	var err error
	if h.CreatedAt, err = ParseTime(r.CreatedAt, "created_at"); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = ParseTime(r.UpdatedAt, "updated_at"); err != nil {
		return models.Habit{}, err
	}
	if h.SyncedAt, err = ParseNullTime(r.SyncedAt, "synced_at"); err != nil {
		return models.Habit{}, err
	}
	if h.DeletedAt, err = ParseNullTime(r.DeletedAt, "deleted_at"); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// EntryRow holds the raw column values of a completion_entries row
type EntryRow struct {
	Entry     models.CompletionEntry
	CreatedAt string
	UpdatedAt string
}

// EntryColumns is the select list matching EntryRow.Dest
const EntryColumns = `id, owner_id, habit_id, date_key, progress, completed, needs_sync, created_at, updated_at`

// Dest returns scan targets in the order of EntryColumns
func (r *EntryRow) Dest() []interface{} {
	e := &r.Entry
	return []interface{}{
		&e.ID, &e.OwnerID, &e.HabitID, &e.DateKey, &e.Progress, &e.Completed, &e.NeedsSync,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

// Decode converts the raw columns into an entry
func (r *EntryRow) Decode() (models.CompletionEntry, error) {
	e := r.Entry
	var err error
	if e.CreatedAt, err = ParseTime(r.CreatedAt, "created_at"); err != nil {
		return models.CompletionEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	if e.UpdatedAt, err = ParseTime(r.UpdatedAt, "updated_at"); err != nil {
		return models.CompletionEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	return e, nil
}

// Scanner is satisfied by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanHabit reads one habits row
func ScanHabit(s Scanner) (models.Habit, error) {
	var row HabitRow
	if err := s.Scan(row.Dest()...); err != nil {
		return models.Habit{}, err
	}
	return row.Decode()
}

// ScanEntry reads one completion_entries row
func ScanEntry(s Scanner) (models.CompletionEntry, error) {
	var row EntryRow
	if err := s.Scan(row.Dest()...); err != nil {
		return models.CompletionEntry{}, err
	}
	return row.Decode()
}

// ScanEntries drains rows into a slice
func ScanEntries(rows *sql.Rows) ([]models.CompletionEntry, error) {
	defer rows.Close()
	var entries []models.CompletionEntry
	for rows.Next() {
		e, err := ScanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ScanHabits drains rows into a slice
func ScanHabits(rows *sql.Rows) ([]models.Habit, error) {
	defer rows.Close()
	var habits []models.Habit
	for rows.Next() {
		h, err := ScanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}
