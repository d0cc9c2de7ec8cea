package sqlite

import (
	"database/sql"
	stderrors "errors"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) FetchEntry(ownerID, habitID, dateKey string) (*models.CompletionEntry, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.EntryColumns+`
		FROM completion_entries
		WHERE owner_id = ? AND habit_id = ? AND date_key = ?`, ownerID, habitID, dateKey)

	e, err := storage.ScanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertEntry writes the entry keyed by (owner, habit, date). The row id and
// created_at of an existing entry are kept.
func (s *Store) UpsertEntry(e models.CompletionEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO completion_entries (`+storage.EntryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, habit_id, date_key) DO UPDATE SET
			progress = excluded.progress,
			completed = excluded.completed,
			needs_sync = excluded.needs_sync,
			updated_at = excluded.updated_at`,
		e.ID, e.OwnerID, e.HabitID, e.DateKey, e.Progress, e.Completed, e.NeedsSync,
		storage.FormatTime(e.CreatedAt), storage.FormatTime(e.UpdatedAt))
	return err
}

func (s *Store) FetchAll(ownerID, habitID string) ([]models.CompletionEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+storage.EntryColumns+`
		FROM completion_entries
		WHERE owner_id = ? AND habit_id = ?
		ORDER BY date_key`, ownerID, habitID)
	if err != nil {
		return nil, err
	}
	return storage.ScanEntries(rows)
}

func (s *Store) FetchUnsynced(ownerID string) ([]models.CompletionEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+storage.EntryColumns+`
		FROM completion_entries
		WHERE owner_id = ? AND needs_sync = 1
		ORDER BY habit_id, date_key`, ownerID)
	if err != nil {
		return nil, err
	}
	return storage.ScanEntries(rows)
}

// MarkEntriesSynced clears the sync marker of each entry whose stored
// updated_at still equals the acknowledged one.
func (s *Store) MarkEntriesSynced(entries []models.CompletionEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE completion_entries SET needs_sync = 0
		WHERE owner_id = ? AND habit_id = ? AND date_key = ? AND updated_at = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.OwnerID, e.HabitID, e.DateKey, storage.FormatTime(e.UpdatedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetAllEntries returns every entry of every owner, for integrity checks
func (s *Store) GetAllEntries() ([]models.CompletionEntry, error) {
	exists, err := s.tableExists("completion_entries")
	if err != nil || !exists {
		return []models.CompletionEntry{}, err
	}

	rows, err := s.db.Query(`
		SELECT ` + storage.EntryColumns + `
		FROM completion_entries
		ORDER BY owner_id, habit_id, date_key`)
	if err != nil {
		return nil, err
	}
	return storage.ScanEntries(rows)
}
