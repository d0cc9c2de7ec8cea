package habits

import (
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/schedule"
)

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Breaking bool   `short:"b" help:"Track a habit being cut down instead of built up."`
	Goal     int    `short:"g" help:"Daily goal amount for formation habits." default:"1"`
	Unit     string `short:"u" help:"Unit of the goal amount (e.g. times, minutes)."`
	GoalBy   string `help:"Per-weekday goal overrides, e.g. 'sat=3,sun=3'."`
	Baseline int    `help:"Usage level before starting (breaking habits)."`
	Target   int    `help:"Daily usage ceiling (breaking habits)."`
	Start    string `help:"Start date: YYYY-MM-DD, today, yesterday or -N (default: today)."`
	End      string `help:"Optional end date: YYYY-MM-DD, today, yesterday or -N."`
	ScheduleFlags `embed:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habit := models.Habit{
		OwnerID:    ctx.OwnerID(),
		Name:       c.Name,
		Kind:       constants.HabitKindFormation,
		Schedule:   models.Schedule{Type: constants.ScheduleDaily},
		GoalAmount: c.Goal,
		GoalUnit:   c.Unit,
	}
	if c.Breaking {
		habit.Kind = constants.HabitKindBreaking
		habit.Baseline = c.Baseline
		habit.Target = c.Target
	}
	if err := c.ScheduleFlags.apply(&habit.Schedule); err != nil {
		return err
	}
	if c.GoalBy != "" {
		goals, err := cli.ParseWeekdayGoals(c.GoalBy)
		if err != nil {
			return err
		}
		habit.GoalByWeekday = goals
	}

	start, err := dateKey(ctx, c.Start)
	if err != nil {
		return err
	}
	habit.StartDate = start
	if c.End != "" {
		if habit.EndDate, err = dateKey(ctx, c.End); err != nil {
			return err
		}
	}

	created, err := ctx.Habits().Create(habit)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s, %s)\n", created.Name, created.Kind, schedule.Describe(created.Schedule))
	ctx.Printf("  ID: %s\n", created.ID)
	return nil
}
