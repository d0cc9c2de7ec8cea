package schedule

import (
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

func day(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(constants.DateFormat, key, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", key, err)
	}
	return d
}

func TestIsScheduled_Daily(t *testing.T) {
	habit := models.Habit{
		Schedule:  models.Schedule{Type: constants.ScheduleDaily},
		StartDate: "2026-01-01",
	}

	if !IsScheduled(habit, day(t, "2026-01-01")) {
		t.Error("Expected habit to be scheduled on its start date")
	}
	if !IsScheduled(habit, day(t, "2026-07-19")) {
		t.Error("Expected open-ended daily habit to be scheduled months later")
	}
	if IsScheduled(habit, day(t, "2025-12-31")) {
		t.Error("Expected habit not to be scheduled before its start date")
	}
}

func TestIsScheduled_EndDate(t *testing.T) {
	habit := models.Habit{
		Schedule:  models.Schedule{Type: constants.ScheduleDaily},
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	}

	if !IsScheduled(habit, day(t, "2026-01-31")) {
		t.Error("Expected habit to be scheduled on its end date")
	}
	if IsScheduled(habit, day(t, "2026-02-01")) {
		t.Error("Expected habit not to be scheduled after its end date")
	}
}

func TestIsScheduled_Weekly(t *testing.T) {
	habit := models.Habit{
		Schedule: models.Schedule{
			Type:     constants.ScheduleWeekly,
			Weekdays: []time.Weekday{time.Monday, time.Thursday},
		},
		StartDate: "2026-01-01",
	}

	// 2026-01-05 is a Monday, 2026-01-08 a Thursday
	tests := []struct {
		date string
		want bool
	}{
		{"2026-01-05", true},
		{"2026-01-06", false},
		{"2026-01-07", false},
		{"2026-01-08", true},
		{"2026-01-10", false},
	}
	for _, tt := range tests {
		if got := IsScheduled(habit, day(t, tt.date)); got != tt.want {
			t.Errorf("IsScheduled(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}

	habit.Schedule.Weekdays = nil
	if IsScheduled(habit, day(t, "2026-01-05")) {
		t.Error("Expected weekly habit without weekdays never to be scheduled")
	}
}

func TestIsScheduled_Weekdays(t *testing.T) {
	habit := models.Habit{
		Schedule:  models.Schedule{Type: constants.ScheduleWeekdays},
		StartDate: "2026-01-01",
	}

	if !IsScheduled(habit, day(t, "2026-01-09")) { // Friday
		t.Error("Expected habit to be scheduled on Friday")
	}
	if IsScheduled(habit, day(t, "2026-01-10")) { // Saturday
		t.Error("Expected habit not to be scheduled on Saturday")
	}
	if IsScheduled(habit, day(t, "2026-01-11")) { // Sunday
		t.Error("Expected habit not to be scheduled on Sunday")
	}
}

func TestIsScheduled_QuotaEligibleEveryDay(t *testing.T) {
	for _, typ := range []constants.ScheduleType{constants.ScheduleTimesPerWeek, constants.ScheduleTimesPerMonth} {
		habit := models.Habit{
			Schedule:  models.Schedule{Type: typ, Count: 3},
			StartDate: "2026-01-01",
		}
		for _, d := range []string{"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04"} {
			if !IsScheduled(habit, day(t, d)) {
				t.Errorf("%s: expected %s to be eligible", typ, d)
			}
		}

		habit.Schedule.Count = 0
		if IsScheduled(habit, day(t, "2026-01-02")) {
			t.Errorf("%s: expected zero quota never to be scheduled", typ)
		}
	}
}

func TestIsScheduled_EveryNDays(t *testing.T) {
	habit := models.Habit{
		Schedule:  models.Schedule{Type: constants.ScheduleEveryNDays, Interval: 3},
		StartDate: "2026-01-30",
	}

	tests := []struct {
		date string
		want bool
	}{
		{"2026-01-30", true},
		{"2026-01-31", false},
		{"2026-02-01", false},
		{"2026-02-02", true},
		{"2026-02-05", true},
	}
	for _, tt := range tests {
		if got := IsScheduled(habit, day(t, tt.date)); got != tt.want {
			t.Errorf("IsScheduled(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestIsScheduled_UnknownType(t *testing.T) {
	habit := models.Habit{Schedule: models.Schedule{Type: "fortnightly"}}
	if IsScheduled(habit, day(t, "2026-01-01")) {
		t.Error("Expected unknown schedule type never to be scheduled")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		rule models.Schedule
		want string
	}{
		{models.Schedule{Type: constants.ScheduleDaily}, "daily"},
		{models.Schedule{Type: constants.ScheduleWeekly, Weekdays: []time.Weekday{time.Monday, time.Friday}}, "weekly on Mon,Fri"},
		{models.Schedule{Type: constants.ScheduleWeekdays}, "weekdays"},
		{models.Schedule{Type: constants.ScheduleTimesPerWeek, Count: 3}, "3 times per week"},
		{models.Schedule{Type: constants.ScheduleEveryNDays, Interval: 2}, "every 2 days"},
	}
	for _, tt := range tests {
		if got := Describe(tt.rule); got != tt.want {
			t.Errorf("Describe(%+v) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}
