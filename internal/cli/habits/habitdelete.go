package habits

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
)

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Habits().Delete(habit.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s (ID: %s)\n", habit.Name, habit.ID)
	ctx.Printf("  Use 'tally habit restore %s' to undo.\n", habit.ID)
	return nil
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Name or ID of the deleted habit."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habit, err := ctx.Habits().Restore(ctx.OwnerID(), c.Habit)
	if err != nil {
		return err
	}

	ctx.Printf("Restored habit: %s (ID: %s)\n", habit.Name, habit.ID)
	return nil
}

type HabitPurgeCmd struct {
	Habit string `arg:"" help:"Habit name or ID, deleted or not."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitPurgeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	habit, err := ctx.Habits().Resolve(ctx.OwnerID(), c.Habit, true)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm(fmt.Sprintf("Purge %q?", habit.Name),
			"This permanently removes the habit and its entire history.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Printf("Purge cancelled.\n")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Habits().Purge(habit.ID); err != nil {
		return err
	}

	ctx.Printf("Purged habit: %s (ID: %s)\n", habit.Name, habit.ID)
	return nil
}
