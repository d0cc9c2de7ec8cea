package habits

import (
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/schedule"
)

type HabitEditCmd struct {
	Habit    string  `arg:"" help:"Habit name or ID."`
	Name     *string `help:"New habit name."`
	Kind     *string `help:"New kind (formation|breaking)."`
	Goal     *int    `short:"g" help:"New daily goal amount."`
	Unit     *string `short:"u" help:"New goal unit."`
	GoalBy   *string `help:"New per-weekday goal overrides; empty clears them."`
	Baseline *int    `help:"New baseline (breaking habits)."`
	Target   *int    `help:"New usage ceiling (breaking habits)."`
	Start    *string `help:"New start date."`
	End      *string `help:"New end date; empty makes the habit open-ended."`
	ScheduleFlags `embed:""`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Name != nil {
		habit.Name = *c.Name
	}
	if c.Kind != nil {
		habit.Kind = constants.HabitKind(*c.Kind)
	}
	if c.Goal != nil {
		habit.GoalAmount = *c.Goal
	}
	if c.Unit != nil {
		habit.GoalUnit = *c.Unit
	}
	if c.GoalBy != nil {
		goals, err := cli.ParseWeekdayGoals(*c.GoalBy)
		if err != nil {
			return err
		}
		habit.GoalByWeekday = goals
	}
	if c.Baseline != nil {
		habit.Baseline = *c.Baseline
	}
	if c.Target != nil {
		habit.Target = *c.Target
	}
	if c.Start != nil {
		if habit.StartDate, err = dateKey(ctx, *c.Start); err != nil {
			return err
		}
	}
	if c.End != nil {
		habit.EndDate = ""
		if *c.End != "" {
			if habit.EndDate, err = dateKey(ctx, *c.End); err != nil {
				return err
			}
		}
	}
	if err := c.ScheduleFlags.apply(&habit.Schedule); err != nil {
		return err
	}

	updated, err := ctx.Habits().Update(habit)
	if err != nil {
		return err
	}

	ctx.Printf("Updated habit: %s (%s, %s)\n", updated.Name, updated.Kind, schedule.Describe(updated.Schedule))
	return nil
}
