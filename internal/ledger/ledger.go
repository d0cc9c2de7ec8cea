// Package ledger records per-day progress for habits and guarantees at most
// one completion entry per (owner, habit, day).
//
// All writes and snapshot reads for a habit are serialized on that habit's
// lock. Unrelated habits proceed concurrently. Nothing here starts goroutines
// or touches the network; storage failures surface to the caller of the
// operation that hit them.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// Change describes the outcome of a successful progress write
type Change struct {
	Entry             models.CompletionEntry
	PreviousProgress  int
	PreviousCompleted bool
	Created           bool
	// CompletionChanged is true when Completed flipped with this write
	CompletionChanged bool
	// IsToday is true when the entry's date key is today in the ledger's location
	IsToday bool
}

// CompletionListener is notified after a write flips completion for today.
// Edits to past days never notify.
type CompletionListener func(habit models.Habit, change Change)

// Ledger is the completion ledger. The zero value is not usable; call New.
type Ledger struct {
	store Store
	loc   *time.Location
	now   func() time.Time
	locks *keyedMutex
	log   *log.Logger

	// view holds the last known entry per key. It is updated optimistically
	// before a write and reverted if the write fails.
	viewMu sync.Mutex
	view   map[models.EntryKey]models.CompletionEntry

	listenersMu sync.RWMutex
	listeners   []CompletionListener
}

// New creates a ledger over store. Date keys are computed in loc.
func New(store Store, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{
		store: store,
		loc:   loc,
		now:   time.Now,
		locks: newKeyedMutex(),
		log:   logger.Component("ledger"),
		view:  make(map[models.EntryKey]models.CompletionEntry),
	}
}

// SetClock replaces the ledger's notion of "now". Intended for tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Location returns the time zone date keys are computed in
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Today returns midnight of the current day in the ledger's location
func (l *Ledger) Today() time.Time {
	return utils.StartOfDay(l.now(), l.loc)
}

// OnCompletionChanged registers a listener for today's completion flips
func (l *Ledger) OnCompletionChanged(fn CompletionListener) {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// SetProgress records newProgress for the habit on the given day, creating the
// entry if needed. Progress must be non-negative.
func (l *Ledger) SetProgress(habit models.Habit, day time.Time, newProgress int) (Change, error) {
	if newProgress < 0 {
		return Change{}, errors.Invalid("progress must be >= 0, got %d", newProgress)
	}
	if err := checkHabit(habit); err != nil {
		return Change{}, err
	}

	unlock := l.locks.Lock(habit.ID)
	change, err := l.write(habit, day, func(int) int { return newProgress })
	unlock()

	if err != nil {
		return Change{}, err
	}
	l.notify(habit, change)
	return change, nil
}

// AddProgress adds delta to the day's progress, clamping the result at zero.
// The read and the write happen under the same lock.
func (l *Ledger) AddProgress(habit models.Habit, day time.Time, delta int) (Change, error) {
	if err := checkHabit(habit); err != nil {
		return Change{}, err
	}

	unlock := l.locks.Lock(habit.ID)
	change, err := l.write(habit, day, func(current int) int {
		return max(current+delta, 0)
	})
	unlock()

	if err != nil {
		return Change{}, err
	}
	l.notify(habit, change)
	return change, nil
}

// Toggle completes the day (progress = goal) if it is not completed, and
// reverses it (progress = 0) if it is. A day whose goal is 0 cannot be
// toggled.
func (l *Ledger) Toggle(habit models.Habit, day time.Time) (Change, error) {
	if err := checkHabit(habit); err != nil {
		return Change{}, err
	}

	goal := habit.GoalFor(utils.StartOfDay(day, l.loc))
	if goal == 0 {
		// progress >= 0 always holds, so there is nothing to reverse
		return Change{}, errors.Invalid("habit %s has a goal of 0 on this day and is always complete", habit.Name)
	}

	unlock := l.locks.Lock(habit.ID)
	change, err := l.write(habit, day, func(current int) int {
		if current >= goal {
			return 0
		}
		return goal
	})
	unlock()

	if err != nil {
		return Change{}, err
	}
	l.notify(habit, change)
	return change, nil
}

// GetProgress returns the day's progress. A day with no entry has progress 0.
func (l *Ledger) GetProgress(habit models.Habit, day time.Time) (int, error) {
	entry, err := l.lookupLocked(habit, day)
	if err != nil || entry == nil {
		return 0, err
	}
	return entry.Progress, nil
}

// IsCompleted reports whether the day is completed. A day with no entry is not.
func (l *Ledger) IsCompleted(habit models.Habit, day time.Time) (bool, error) {
	entry, err := l.lookupLocked(habit, day)
	if err != nil || entry == nil {
		return false, err
	}
	return l.completed(habit, *entry), nil
}

// Snapshot returns every entry of the habit as one consistent view. It never
// interleaves with a write to the same habit.
func (l *Ledger) Snapshot(habit models.Habit) (Snapshot, error) {
	if err := checkHabit(habit); err != nil {
		return Snapshot{}, err
	}

	unlock := l.locks.Lock(habit.ID)
	defer unlock()

	entries, err := l.store.FetchAll(habit.OwnerID, habit.ID)
	if err != nil {
		l.log.Error("Failed to fetch entries", "habit", habit.ID, "error", err)
		return Snapshot{}, errors.Storage("fetch entries", err)
	}

	l.viewMu.Lock()
	for i := range entries {
		entries[i].Completed = l.completed(habit, entries[i])
		l.view[entries[i].Key()] = entries[i]
	}
	l.viewMu.Unlock()

	return newSnapshot(entries), nil
}

// Entries returns all entries of the habit sorted by date key
func (l *Ledger) Entries(habit models.Habit) ([]models.CompletionEntry, error) {
	snap, err := l.Snapshot(habit)
	if err != nil {
		return nil, err
	}
	return snap.Entries(), nil
}

// Pending returns every entry of the owner still carrying the sync marker.
func (l *Ledger) Pending(ownerID string) ([]models.CompletionEntry, error) {
	ss, ok := l.store.(SyncStore)
	if !ok {
		return nil, errors.Storage("fetch unsynced", errSyncUnsupported)
	}
	entries, err := ss.FetchUnsynced(ownerID)
	if err != nil {
		return nil, errors.Storage("fetch unsynced", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].HabitID != entries[j].HabitID {
			return entries[i].HabitID < entries[j].HabitID
		}
		return entries[i].DateKey < entries[j].DateKey
	})
	return entries, nil
}

// MarkSynced clears the sync marker on the acknowledged entries of a habit.
// An entry edited after it was read for sync stays pending.
func (l *Ledger) MarkSynced(habit models.Habit, acked []models.CompletionEntry) error {
	ss, ok := l.store.(SyncStore)
	if !ok {
		return errors.Storage("mark synced", errSyncUnsupported)
	}
	for _, e := range acked {
		if e.HabitID != habit.ID || e.OwnerID != habit.OwnerID {
			return errors.Invalid("entry %s does not belong to habit %s", e.DateKey, habit.ID)
		}
	}

	unlock := l.locks.Lock(habit.ID)
	defer unlock()

	if err := ss.MarkEntriesSynced(acked); err != nil {
		l.log.Error("Failed to mark entries synced", "habit", habit.ID, "error", err)
		return errors.Storage("mark synced", err)
	}

	l.viewMu.Lock()
	for _, e := range acked {
		if cur, ok := l.view[e.Key()]; ok && cur.UpdatedAt.Equal(e.UpdatedAt) {
			cur.NeedsSync = false
			l.view[e.Key()] = cur
		}
	}
	l.viewMu.Unlock()

	l.log.Debug("Marked entries synced", "habit", habit.ID, "count", len(acked))
	return nil
}

// Forget drops every cached entry of the habit, e.g. after a hard delete.
func (l *Ledger) Forget(habitID string) {
	unlock := l.locks.Lock(habitID)
	defer unlock()

	l.viewMu.Lock()
	defer l.viewMu.Unlock()
	for key := range l.view {
		if key.HabitID == habitID {
			delete(l.view, key)
		}
	}
}

// write performs one optimistic upsert. The caller holds the habit lock.
func (l *Ledger) write(habit models.Habit, day time.Time, next func(current int) int) (Change, error) {
	day = utils.StartOfDay(day, l.loc)
	key := models.EntryKey{
		OwnerID: habit.OwnerID,
		HabitID: habit.ID,
		DateKey: utils.DateKey(day, l.loc),
	}

	prev, err := l.lookup(key)
	if err != nil {
		return Change{}, err
	}

	now := l.now()
	entry := models.CompletionEntry{
		ID:        uuid.New().String(),
		OwnerID:   key.OwnerID,
		HabitID:   key.HabitID,
		DateKey:   key.DateKey,
		CreatedAt: now,
	}
	change := Change{Created: prev == nil}
	if prev != nil {
		entry = *prev
		change.PreviousProgress = prev.Progress
		change.PreviousCompleted = l.completed(habit, *prev)
	}

	progress := next(change.PreviousProgress)
	if progress < 0 {
		return Change{}, errors.Invalid("progress must be >= 0, got %d", progress)
	}
	entry.Progress = progress
	entry.Completed = progress >= habit.GoalFor(day)
	entry.UpdatedAt = now
	entry.NeedsSync = true

	l.viewMu.Lock()
	l.view[key] = entry
	l.viewMu.Unlock()

	if err := l.store.UpsertEntry(entry); err != nil {
		l.rollback(key, prev)
		l.log.Error("Failed to write entry, rolled back",
			"habit", habit.ID, "day", key.DateKey, "progress", progress, "error", err)
		return Change{}, errors.Storage("upsert entry", err)
	}

	change.Entry = entry
	change.CompletionChanged = entry.Completed != change.PreviousCompleted
	change.IsToday = key.DateKey == utils.DateKey(now, l.loc)

	l.log.Debug("Recorded progress",
		"habit", habit.ID, "day", key.DateKey, "progress", progress, "completed", entry.Completed)
	return change, nil
}

// completed derives the flag from progress and the habit's current goal. The
// stored Completed column only records the goal in force at write time.
func (l *Ledger) completed(habit models.Habit, e models.CompletionEntry) bool {
	day, err := utils.ParseDateKey(e.DateKey, l.loc)
	if err != nil {
		return e.Completed
	}
	return e.Progress >= habit.GoalFor(day)
}

func (l *Ledger) rollback(key models.EntryKey, prev *models.CompletionEntry) {
	l.viewMu.Lock()
	defer l.viewMu.Unlock()
	if prev == nil {
		delete(l.view, key)
		return
	}
	l.view[key] = *prev
}

// lookupLocked reads one entry under the habit lock
func (l *Ledger) lookupLocked(habit models.Habit, day time.Time) (*models.CompletionEntry, error) {
	if err := checkHabit(habit); err != nil {
		return nil, err
	}
	key := models.EntryKey{
		OwnerID: habit.OwnerID,
		HabitID: habit.ID,
		DateKey: utils.DateKey(day, l.loc),
	}

	unlock := l.locks.Lock(habit.ID)
	defer unlock()
	return l.lookup(key)
}

// lookup returns the entry for key from the view, falling back to the store.
// The caller holds the habit lock.
func (l *Ledger) lookup(key models.EntryKey) (*models.CompletionEntry, error) {
	l.viewMu.Lock()
	cached, ok := l.view[key]
	l.viewMu.Unlock()
	if ok {
		return &cached, nil
	}

	entry, err := l.store.FetchEntry(key.OwnerID, key.HabitID, key.DateKey)
	if err != nil {
		l.log.Error("Failed to fetch entry", "habit", key.HabitID, "day", key.DateKey, "error", err)
		return nil, errors.Storage("fetch entry", err)
	}
	if entry == nil {
		return nil, nil
	}

	l.viewMu.Lock()
	l.view[key] = *entry
	l.viewMu.Unlock()
	return entry, nil
}

func (l *Ledger) notify(habit models.Habit, change Change) {
	if !change.CompletionChanged || !change.IsToday {
		return
	}

	l.listenersMu.RLock()
	listeners := append([]CompletionListener(nil), l.listeners...)
	l.listenersMu.RUnlock()

	l.log.Info("Completion changed for today",
		"habit", habit.ID, "day", change.Entry.DateKey, "completed", change.Entry.Completed)
	for _, fn := range listeners {
		fn(habit, change)
	}
}

func checkHabit(habit models.Habit) error {
	if habit.ID == "" {
		return errors.Invalid("habit id is required")
	}
	return nil
}
