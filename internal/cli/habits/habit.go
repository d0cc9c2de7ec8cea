package habits

import (
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit in place."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
	Purge   HabitPurgeCmd   `cmd:"" help:"Permanently remove a habit and its history."`
}

// ScheduleFlags are shared by add and edit. Pointer fields are "unchanged"
// when nil.
type ScheduleFlags struct {
	Schedule *string `short:"s" help:"Schedule (daily|weekly|weekdays|times-per-week|times-per-month|every-n-days)."`
	Days     *string `short:"w" help:"Comma-separated weekdays for a weekly schedule."`
	Count    *int    `short:"n" help:"Quota for times-per-week and times-per-month schedules."`
	Interval *int    `short:"i" help:"Interval in days for an every-n-days schedule."`
}

func (f ScheduleFlags) apply(rule *models.Schedule) error {
	if f.Schedule != nil {
		typ := constants.ScheduleType(*f.Schedule)
		switch typ {
		case constants.ScheduleDaily, constants.ScheduleWeekly, constants.ScheduleWeekdays,
			constants.ScheduleTimesPerWeek, constants.ScheduleTimesPerMonth, constants.ScheduleEveryNDays:
		default:
			return errors.Invalid("invalid schedule type: %s", *f.Schedule)
		}
		if typ != rule.Type {
			*rule = models.Schedule{Type: typ}
		}
	}
	if f.Days != nil {
		days, err := cli.ParseWeekdays(*f.Days)
		if err != nil {
			return err
		}
		rule.Weekdays = days
	}
	if f.Count != nil {
		rule.Count = *f.Count
	}
	if f.Interval != nil {
		rule.Interval = *f.Interval
	}
	return nil
}

// dateKey resolves a day argument to a date key in the context's time zone
func dateKey(ctx *cli.Context, s string) (string, error) {
	day, err := ctx.ParseDay(s)
	if err != nil {
		return "", err
	}
	return utils.DateKey(day, ctx.Location()), nil
}
