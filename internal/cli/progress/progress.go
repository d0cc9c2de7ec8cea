package progress

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/ledger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/schedule"
	"github.com/julianstephens/tally/internal/utils"
)

type ProgressCmd struct {
	Set    ProgressSetCmd    `cmd:"" help:"Set a day's progress."`
	Add    ProgressAddCmd    `cmd:"" help:"Add to (or subtract from) a day's progress."`
	Toggle ProgressToggleCmd `cmd:"" help:"Complete a day, or reverse a completed one."`
	Show   ProgressShowCmd   `cmd:"" help:"Show a day's progress." default:"withargs"`
}

type ProgressSetCmd struct {
	Habit    string `arg:"" help:"Habit name or ID."`
	Progress int    `arg:"" help:"New progress value (>= 0)."`
	Day      string `short:"d" help:"Day: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *ProgressSetCmd) Run(ctx *cli.Context) error {
	return write(ctx, c.Habit, c.Day, func(l *ledger.Ledger, h models.Habit, day dayArg) (ledger.Change, error) {
		return l.SetProgress(h, day.t, c.Progress)
	})
}

type ProgressAddCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Delta int    `arg:"" optional:"" help:"Amount to add; negative values subtract." default:"1"`
	Day   string `short:"d" help:"Day: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *ProgressAddCmd) Run(ctx *cli.Context) error {
	return write(ctx, c.Habit, c.Day, func(l *ledger.Ledger, h models.Habit, day dayArg) (ledger.Change, error) {
		return l.AddProgress(h, day.t, c.Delta)
	})
}

type ProgressToggleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Day   string `short:"d" help:"Day: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *ProgressToggleCmd) Run(ctx *cli.Context) error {
	return write(ctx, c.Habit, c.Day, func(l *ledger.Ledger, h models.Habit, day dayArg) (ledger.Change, error) {
		return l.Toggle(h, day.t)
	})
}

type ProgressShowCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: every habit due that day)."`
	Day   string `short:"d" help:"Day: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *ProgressShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	day, err := parseDay(ctx, c.Day)
	if err != nil {
		return err
	}

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		all, err := ctx.Habits().List(ctx.OwnerID(), false)
		if err != nil {
			return err
		}
		for _, h := range all {
			if schedule.IsScheduled(h, day.t) {
				habits = append(habits, h)
			}
		}
	}

	if len(habits) == 0 {
		ctx.Printf("No habits due on %s.\n", day.key)
		return nil
	}

	ctx.Printf("%s\n\n", cli.TitleStyle.Render("Habits for "+day.key))
	done := 0
	for _, h := range habits {
		progress, err := ctx.Ledger().GetProgress(h, day.t)
		if err != nil {
			return err
		}
		completed, err := ctx.Ledger().IsCompleted(h, day.t)
		if err != nil {
			return err
		}
		if completed {
			done++
		}
		ctx.Printf("%s %s  %s\n", mark(completed), h.Name, cli.MutedStyle.Render(amount(h, day, progress)))
	}
	ctx.Printf("\nCompleted: %d/%d\n", done, len(habits))
	return nil
}

type dayArg struct {
	t   time.Time
	key string
}

func parseDay(ctx *cli.Context, s string) (dayArg, error) {
	t, err := ctx.ParseDay(s)
	if err != nil {
		return dayArg{}, err
	}
	return dayArg{t: t, key: utils.DateKey(t, ctx.Location())}, nil
}

// write resolves the habit and day, applies one ledger write and reports it
func write(ctx *cli.Context, ref, dayStr string, fn func(*ledger.Ledger, models.Habit, dayArg) (ledger.Change, error)) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(ref)
	if err != nil {
		return err
	}
	day, err := parseDay(ctx, dayStr)
	if err != nil {
		return err
	}
	if !schedule.InRange(habit, day.t) {
		ctx.Printf("%s\n", cli.WarningStyle.Render(fmt.Sprintf("%s is outside %s's active range", day.key, habit.Name)))
	}

	change, err := fn(ctx.Ledger(), habit, day)
	if err != nil {
		return err
	}

	ctx.Printf("%s %s on %s: %s\n", mark(change.Entry.Completed), habit.Name, day.key,
		amount(habit, day, change.Entry.Progress))
	return nil
}

func mark(completed bool) string {
	if completed {
		return cli.SuccessStyle.Render("[x]")
	}
	return "[ ]"
}

func amount(h models.Habit, day dayArg, progress int) string {
	unit := h.GoalUnit
	if unit == "" {
		unit = "times"
	}
	return fmt.Sprintf("%d/%d %s", progress, h.GoalFor(day.t), unit)
}
