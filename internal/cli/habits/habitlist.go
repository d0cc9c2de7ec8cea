package habits

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/schedule"
)

type HabitListCmd struct {
	Deleted bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habits, err := ctx.Habits().List(ctx.OwnerID(), c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Printf("No habits found.\n")
		return nil
	}

	ctx.Printf("%s\n\n", cli.TitleStyle.Render("Habits"))
	for _, h := range habits {
		status := ""
		if h.IsDeleted() {
			status = " " + cli.DangerStyle.Render("[DELETED]")
		}
		ctx.Printf("%s%s\n", h.Name, status)
		ctx.Printf("  %s\n", cli.MutedStyle.Render(fmt.Sprintf("%s · %s · %s · since %s%s",
			h.Kind, schedule.Describe(h.Schedule), goal(h), h.StartDate, until(h))))
		ctx.Printf("  %s\n", cli.MutedStyle.Render("ID: "+h.ID))
	}
	return nil
}

func goal(h models.Habit) string {
	unit := h.GoalUnit
	if unit == "" {
		unit = "times"
	}
	if h.Kind == constants.HabitKindBreaking {
		return fmt.Sprintf("at most %d %s (baseline %d)", h.Target, unit, h.Baseline)
	}
	s := fmt.Sprintf("%d %s", h.GoalAmount, unit)
	if len(h.GoalByWeekday) > 0 {
		s += fmt.Sprintf(" (%d weekday overrides)", len(h.GoalByWeekday))
	}
	return s
}

func until(h models.Habit) string {
	if h.EndDate == "" {
		return ""
	}
	return " until " + h.EndDate
}
