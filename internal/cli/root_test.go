package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

func setupContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := NewContext(store)
	ctx.Out = &out
	ctx.Timezone = "UTC"
	ctx.SetClock(func() time.Time { return time.Date(2026, 2, 1, 22, 15, 0, 0, time.UTC) })
	require.NoError(t, ctx.Open())
	return ctx, &out
}

func TestContextDefaults(t *testing.T) {
	ctx, _ := setupContext(t)

	assert.Equal(t, constants.GuestOwnerID, ctx.OwnerID())
	assert.Equal(t, "UTC", ctx.Location().String())
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), ctx.Today())
}

func TestContextOwnerOverride(t *testing.T) {
	ctx, _ := setupContext(t)
	ctx.Owner = "acct-42"
	require.NoError(t, ctx.Setup())

	assert.Equal(t, "acct-42", ctx.OwnerID())
}

func TestContextRejectsUnknownTimezone(t *testing.T) {
	ctx, _ := setupContext(t)
	ctx.Timezone = "Mars/Olympus_Mons"

	err := ctx.Setup()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestParseDay(t *testing.T) {
	ctx, _ := setupContext(t)

	tests := []struct {
		in   string
		want string
	}{
		{"", "2026-02-01"},
		{"today", "2026-02-01"},
		{"Yesterday", "2026-01-31"},
		{"-3", "2026-01-29"},
		{"2025-12-31", "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			day, err := ctx.ParseDay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, day.Format(constants.DateFormat))
		})
	}

	for _, bad := range []string{"-x", "2026-13-01", "tomorrowish"} {
		_, err := ctx.ParseDay(bad)
		assert.ErrorIs(t, err, errors.ErrInvalidInput, bad)
	}
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays("mon, Wednesday,5,mon")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, days)

	_, err = ParseWeekdays("funday")
	assert.Error(t, err)
	_, err = ParseWeekdays(" , ")
	assert.Error(t, err)
}

func TestParseWeekdayGoals(t *testing.T) {
	goals, err := ParseWeekdayGoals("sat=3, sun=4")
	require.NoError(t, err)
	assert.Equal(t, map[time.Weekday]int{time.Saturday: 3, time.Sunday: 4}, goals)

	goals, err = ParseWeekdayGoals("")
	require.NoError(t, err)
	assert.Nil(t, goals)

	_, err = ParseWeekdayGoals("sat")
	assert.Error(t, err)
	_, err = ParseWeekdayGoals("sat=lots")
	assert.Error(t, err)
}
