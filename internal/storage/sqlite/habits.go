package sqlite

import (
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) AddHabit(habit models.Habit) error {
	schedule, goals, err := storage.EncodeHabitJSON(habit)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO habits (`+storage.HabitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.OwnerID, habit.Name, string(habit.Kind), schedule, habit.StartDate, habit.EndDate,
		habit.GoalAmount, habit.GoalUnit, goals, habit.Baseline, habit.Target,
		storage.FormatTime(habit.CreatedAt), storage.FormatTime(habit.UpdatedAt),
		storage.FormatNullTime(habit.SyncedAt), storage.FormatNullTime(habit.DeletedAt))
	return err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.HabitColumns+`
		FROM habits WHERE id = ? AND deleted_at IS NULL`, id)
	h, err := storage.ScanHabit(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, errors.NotFound("habit " + id)
	}
	return h, err
}

func (s *Store) GetHabitByName(ownerID, name string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.HabitColumns+`
		FROM habits WHERE owner_id = ? AND name = ? COLLATE NOCASE AND deleted_at IS NULL`, ownerID, name)
	h, err := storage.ScanHabit(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, errors.NotFound("habit " + name)
	}
	return h, err
}

func (s *Store) GetAllHabits(ownerID string, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + storage.HabitColumns + " FROM habits WHERE owner_id = ?"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY created_at, name"

	rows, err := s.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	return storage.ScanHabits(rows)
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	schedule, goals, err := storage.EncodeHabitJSON(habit)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE habits SET
			owner_id = ?, name = ?, kind = ?, schedule = ?, start_date = ?, end_date = ?,
			goal_amount = ?, goal_unit = ?, goal_by_weekday = ?, baseline = ?, target = ?,
			updated_at = ?, synced_at = ?, deleted_at = ?
		WHERE id = ?`,
		habit.OwnerID, habit.Name, string(habit.Kind), schedule, habit.StartDate, habit.EndDate,
		habit.GoalAmount, habit.GoalUnit, goals, habit.Baseline, habit.Target,
		storage.FormatTime(habit.UpdatedAt), storage.FormatNullTime(habit.SyncedAt),
		storage.FormatNullTime(habit.DeletedAt), habit.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "habit "+habit.ID)
}

func (s *Store) DeleteHabit(id string) error {
	now := storage.FormatTime(time.Now())
	res, err := s.db.Exec(`
		UPDATE habits SET deleted_at = ?, updated_at = ?, synced_at = NULL
		WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res, "habit "+id)
}

func (s *Store) RestoreHabit(id string) error {
	res, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL, updated_at = ?, synced_at = NULL
		WHERE id = ? AND deleted_at IS NOT NULL`, storage.FormatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res, "deleted habit "+id)
}

func (s *Store) PurgeHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM completion_entries WHERE habit_id = ?", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRow(res, "habit "+id); err != nil {
		return err
	}
	return tx.Commit()
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound(what)
	}
	return nil
}
