package storage

import "github.com/julianstephens/tally/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// Migrate applies pending schema migrations and returns how many ran
	Migrate(logFn func(string)) (int, error)
	// SchemaVersion returns the database's schema version and the newest one
	// this binary ships
	SchemaVersion() (current, latest int, err error)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(ownerID, name string) (models.Habit, error)
	GetAllHabits(ownerID string, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error
	// PurgeHabit permanently removes the habit and every completion entry it owns
	PurgeHabit(id string) error

	// Completion entries. FetchEntry returns nil, nil when the key has no entry.
	FetchEntry(ownerID, habitID, dateKey string) (*models.CompletionEntry, error)
	UpsertEntry(models.CompletionEntry) error
	FetchAll(ownerID, habitID string) ([]models.CompletionEntry, error)
	FetchUnsynced(ownerID string) ([]models.CompletionEntry, error)
	MarkEntriesSynced([]models.CompletionEntry) error
	GetAllEntries() ([]models.CompletionEntry, error)

	// Utils
	GetConfigPath() string
}
