package habits

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

func setupContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(store)
	ctx.Out = &out
	ctx.Timezone = "UTC"
	ctx.SetClock(func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) })
	require.NoError(t, ctx.Open())
	return ctx, &out
}

func ptr[T any](v T) *T { return &v }

func TestHabitAddCmd_Defaults(t *testing.T) {
	ctx, out := setupContext(t)

	require.NoError(t, (&HabitAddCmd{Name: "Read", Goal: 1}).Run(ctx))
	assert.Contains(t, out.String(), "Added habit: Read (formation, daily)")

	h, err := ctx.ResolveHabit("read")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", h.StartDate)
	assert.Equal(t, constants.ScheduleDaily, h.Schedule.Type)
	assert.Equal(t, constants.GuestOwnerID, h.OwnerID)
}

func TestHabitAddCmd_WeeklyWithOverrides(t *testing.T) {
	ctx, _ := setupContext(t)

	cmd := &HabitAddCmd{
		Name:   "Run",
		Goal:   2,
		Unit:   "km",
		GoalBy: "sat=5",
		Start:  "2026-03-01",
		End:    "2026-06-30",
		ScheduleFlags: ScheduleFlags{
			Schedule: ptr("weekly"),
			Days:     ptr("tue,sat"),
		},
	}
	require.NoError(t, cmd.Run(ctx))

	h, err := ctx.ResolveHabit("Run")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Tuesday, time.Saturday}, h.Schedule.Weekdays)
	assert.Equal(t, 5, h.GoalByWeekday[time.Saturday])
	assert.Equal(t, "2026-03-01", h.StartDate)
	assert.Equal(t, "2026-06-30", h.EndDate)
}

func TestHabitAddCmd_Breaking(t *testing.T) {
	ctx, _ := setupContext(t)

	require.NoError(t, (&HabitAddCmd{Name: "Coffee", Breaking: true, Goal: 1, Baseline: 5, Target: 2}).Run(ctx))

	h, err := ctx.ResolveHabit("Coffee")
	require.NoError(t, err)
	assert.Equal(t, constants.HabitKindBreaking, h.Kind)
	assert.Equal(t, 2, h.GoalFor(ctx.Today()))
}

func TestHabitAddCmd_Invalid(t *testing.T) {
	ctx, _ := setupContext(t)

	err := (&HabitAddCmd{Name: "Swim", Goal: 1, ScheduleFlags: ScheduleFlags{Schedule: ptr("fortnightly")}}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	err = (&HabitAddCmd{Name: "Swim", Goal: 1, ScheduleFlags: ScheduleFlags{Schedule: ptr("weekly")}}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrInvalidInput, "weekly without weekdays")

	require.NoError(t, (&HabitAddCmd{Name: "Swim", Goal: 1}).Run(ctx))
	err = (&HabitAddCmd{Name: "swim", Goal: 1}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrInvalidInput, "duplicate name")
}

func TestHabitEditCmd(t *testing.T) {
	ctx, out := setupContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Read", Goal: 1}).Run(ctx))

	cmd := &HabitEditCmd{
		Habit: "Read",
		Name:  ptr("Read fiction"),
		Goal:  ptr(3),
		ScheduleFlags: ScheduleFlags{
			Schedule: ptr("times-per-week"),
			Count:    ptr(4),
		},
	}
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), "Updated habit: Read fiction (formation, 4 times per week)")

	h, err := ctx.ResolveHabit("Read fiction")
	require.NoError(t, err)
	assert.Equal(t, 3, h.GoalAmount)
	assert.Nil(t, h.SyncedAt)
	assert.Equal(t, time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC), h.UpdatedAt.UTC())
}

func TestHabitEditCmd_ClearsEndDate(t *testing.T) {
	ctx, _ := setupContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Read", Goal: 1, End: "2026-12-31"}).Run(ctx))

	require.NoError(t, (&HabitEditCmd{Habit: "Read", End: ptr("")}).Run(ctx))

	h, err := ctx.ResolveHabit("Read")
	require.NoError(t, err)
	assert.Empty(t, h.EndDate)
}

func TestHabitDeleteRestorePurge(t *testing.T) {
	ctx, out := setupContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Journal", Goal: 1}).Run(ctx))
	h, err := ctx.ResolveHabit("Journal")
	require.NoError(t, err)
	_, err = ctx.Ledger().SetProgress(h, ctx.Today(), 1)
	require.NoError(t, err)

	require.NoError(t, (&HabitDeleteCmd{Habit: "Journal"}).Run(ctx))
	_, err = ctx.ResolveHabit("Journal")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	out.Reset()
	require.NoError(t, (&HabitListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No habits found.")

	out.Reset()
	require.NoError(t, (&HabitListCmd{Deleted: true}).Run(ctx))
	assert.Contains(t, out.String(), "Journal")
	assert.Contains(t, out.String(), "[DELETED]")

	require.NoError(t, (&HabitRestoreCmd{Habit: h.ID}).Run(ctx))
	restored, err := ctx.ResolveHabit("Journal")
	require.NoError(t, err)
	done, err := ctx.Ledger().IsCompleted(restored, ctx.Today())
	require.NoError(t, err)
	assert.True(t, done, "soft delete must keep entries")

	require.NoError(t, (&HabitPurgeCmd{Habit: "Journal", Yes: true}).Run(ctx))
	_, err = ctx.Habits().Resolve(ctx.OwnerID(), h.ID, true)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	entries, err := ctx.Store.FetchAll(h.OwnerID, h.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
