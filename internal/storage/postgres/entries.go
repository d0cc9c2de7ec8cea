package postgres

import (
	"database/sql"
	stderrors "errors"

	pq "github.com/lib/pq"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) FetchEntry(ownerID, habitID, dateKey string) (*models.CompletionEntry, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.EntryColumns+`
		FROM completion_entries
		WHERE owner_id = $1 AND habit_id = $2 AND date_key = $3`, ownerID, habitID, dateKey)

	e, err := storage.ScanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) UpsertEntry(e models.CompletionEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO completion_entries (`+storage.EntryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_id, habit_id, date_key) DO UPDATE SET
			progress = EXCLUDED.progress,
			completed = EXCLUDED.completed,
			needs_sync = EXCLUDED.needs_sync,
			updated_at = EXCLUDED.updated_at`,
		e.ID, e.OwnerID, e.HabitID, e.DateKey, e.Progress, e.Completed, e.NeedsSync,
		storage.FormatTime(e.CreatedAt), storage.FormatTime(e.UpdatedAt))
	return err
}

func (s *Store) FetchAll(ownerID, habitID string) ([]models.CompletionEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+storage.EntryColumns+`
		FROM completion_entries
		WHERE owner_id = $1 AND habit_id = $2
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
		WHERE owner_id = $1 AND needs_sync
		ORDER BY habit_id, date_key`, ownerID)
	if err != nil {
		return nil, err
	}
	return storage.ScanEntries(rows)
}

// MarkEntriesSynced clears the sync marker in one statement per habit batch.
// Rows edited after the acknowledged updated_at keep the marker.
func (s *Store) MarkEntriesSynced(entries []models.CompletionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	owners := make([]string, len(entries))
	habits := make([]string, len(entries))
	days := make([]string, len(entries))
	stamps := make([]string, len(entries))
	for i, e := range entries {
		owners[i] = e.OwnerID
		habits[i] = e.HabitID
		days[i] = e.DateKey
		stamps[i] = storage.FormatTime(e.UpdatedAt)
	}

	_, err := s.db.Exec(`
		UPDATE completion_entries AS c SET needs_sync = FALSE
		FROM unnest($1::text[], $2::text[], $3::text[], $4::text[]) AS a(owner_id, habit_id, date_key, updated_at)
		WHERE c.owner_id = a.owner_id AND c.habit_id = a.habit_id
			AND c.date_key = a.date_key AND c.updated_at = a.updated_at`,
		pq.Array(owners), pq.Array(habits), pq.Array(days), pq.Array(stamps))
	return err
}

func (s *Store) GetAllEntries() ([]models.CompletionEntry, error) {
	rows, err := s.db.Query(`
		SELECT ` + storage.EntryColumns + `
		FROM completion_entries
		ORDER BY owner_id, habit_id, date_key`)
	if err != nil {
		return nil, err
	}
	return storage.ScanEntries(rows)
}
