package ledger

import "github.com/julianstephens/tally/internal/models"

// Store is the persistence the ledger needs. FetchEntry returns a nil entry
// and a nil error when no entry exists for the key.
type Store interface {
	FetchEntry(ownerID, habitID, dateKey string) (*models.CompletionEntry, error)
	UpsertEntry(entry models.CompletionEntry) error
	FetchAll(ownerID, habitID string) ([]models.CompletionEntry, error)
}

// SyncStore is implemented by stores that track the sync marker.
// MarkEntriesSynced must only clear entries whose UpdatedAt still matches the
// acknowledged value, so an edit made after the sync engine read a row keeps
// the row pending.
type SyncStore interface {
	Store
	FetchUnsynced(ownerID string) ([]models.CompletionEntry, error)
	MarkEntriesSynced(entries []models.CompletionEntry) error
}
