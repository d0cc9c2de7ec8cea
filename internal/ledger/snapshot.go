package ledger

import (
	stderrors "errors"
	"sort"

	"github.com/julianstephens/tally/internal/models"
)

var errSyncUnsupported = stderrors.New("store does not track sync state")

// Snapshot is an immutable view of one habit's entries, keyed by date key.
type Snapshot struct {
	byKey    map[string]models.CompletionEntry
	earliest string
}

func newSnapshot(entries []models.CompletionEntry) Snapshot {
	s := Snapshot{byKey: make(map[string]models.CompletionEntry, len(entries))}
	for _, e := range entries {
		s.byKey[e.DateKey] = e
		if s.earliest == "" || e.DateKey < s.earliest {
			s.earliest = e.DateKey
		}
	}
	return s
}

// IsCompleted reports whether the day is completed. Missing days are not.
func (s Snapshot) IsCompleted(dateKey string) bool {
	return s.byKey[dateKey].Completed
}

// Progress returns the day's progress, 0 if the day has no entry
func (s Snapshot) Progress(dateKey string) int {
	return s.byKey[dateKey].Progress
}

// Earliest returns the smallest date key in the snapshot, or "" if empty
func (s Snapshot) Earliest() string {
	return s.earliest
}

// Len returns the number of entries
func (s Snapshot) Len() int {
	return len(s.byKey)
}

// Entries returns the entries sorted by date key
func (s Snapshot) Entries() []models.CompletionEntry {
	out := make([]models.CompletionEntry, 0, len(s.byKey))
	for _, e := range s.byKey {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey < out[j].DateKey })
	return out
}
