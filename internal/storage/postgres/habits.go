package postgres

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		habit.ID, habit.OwnerID, habit.Name, string(habit.Kind), schedule, habit.StartDate, habit.EndDate,
		habit.GoalAmount, habit.GoalUnit, goals, habit.Baseline, habit.Target,
		storage.FormatTime(habit.CreatedAt), storage.FormatTime(habit.UpdatedAt),
		storage.FormatNullTime(habit.SyncedAt), storage.FormatNullTime(habit.DeletedAt))
	return err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.HabitColumns+`
		FROM habits WHERE id = $1 AND deleted_at IS NULL`, id)
	h, err := storage.ScanHabit(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, errors.NotFound("habit " + id)
	}
	return h, err
}

func (s *Store) GetHabitByName(ownerID, name string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.HabitColumns+`
		FROM habits WHERE owner_id = $1 AND LOWER(name) = LOWER($2) AND deleted_at IS NULL`, ownerID, name)
	h, err := storage.ScanHabit(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, errors.NotFound("habit " + name)
	}
	return h, err
}

func (s *Store) GetAllHabits(ownerID string, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + storage.HabitColumns + " FROM habits WHERE owner_id = $1"
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
			owner_id = $1, name = $2, kind = $3, schedule = $4, start_date = $5, end_date = $6,
			goal_amount = $7, goal_unit = $8, goal_by_weekday = $9, baseline = $10, target = $11,
			updated_at = $12, synced_at = $13, deleted_at = $14
		WHERE id = $15`,
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
		UPDATE habits SET deleted_at = $1, updated_at = $1, synced_at = NULL
		WHERE id = $2 AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	return requireRow(res, "habit "+id)
}

func (s *Store) RestoreHabit(id string) error {
	res, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL, updated_at = $1, synced_at = NULL
		WHERE id = $2 AND deleted_at IS NOT NULL`, storage.FormatTime(time.Now()), id)
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

	if _, err := tx.Exec("DELETE FROM completion_entries WHERE habit_id = $1", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM habits WHERE id = $1", id)
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
