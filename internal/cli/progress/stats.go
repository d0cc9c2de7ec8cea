package progress

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/metrics"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/schedule"
	"github.com/julianstephens/tally/internal/utils"
)

// selectHabits returns the named habit, or every active habit of the owner
func selectHabits(ctx *cli.Context, ref string) ([]models.Habit, error) {
	if ref != "" {
		h, err := ctx.ResolveHabit(ref)
		if err != nil {
			return nil, err
		}
		return []models.Habit{h}, nil
	}
	return ctx.Habits().List(ctx.OwnerID(), false)
}

type StreakCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: all habits)."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	habits, err := selectHabits(ctx, c.Habit)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Printf("No habits found.\n")
		return nil
	}

	today := ctx.Today()
	for _, h := range habits {
		snap, err := ctx.Ledger().Snapshot(h)
		if err != nil {
			return err
		}
		current := metrics.Streak(h, snap, today, ctx.Location())
		longest := metrics.LongestStreak(h, snap, today, ctx.Location())
		ctx.Printf("%s  %s  %s\n", h.Name,
			cli.SuccessStyle.Render(fmt.Sprintf("%d day streak", current)),
			cli.MutedStyle.Render(fmt.Sprintf("(longest %d)", longest)))
	}
	return nil
}

type StatsCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: all habits)."`
	From  string `help:"First day of the period (default: 29 days ago)." default:"-29"`
	To    string `help:"Last day of the period (default: today)." default:"today"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	from, err := ctx.ParseDay(c.From)
	if err != nil {
		return err
	}
	to, err := ctx.ParseDay(c.To)
	if err != nil {
		return err
	}
	if to.Before(from) {
		return errors.Invalid("period ends before it starts")
	}

	habits, err := selectHabits(ctx, c.Habit)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Printf("No habits found.\n")
		return nil
	}

	loc := ctx.Location()
	ctx.Printf("%s\n\n", cli.TitleStyle.Render(fmt.Sprintf("Completion %s .. %s", utils.DateKey(from, loc), utils.DateKey(to, loc))))
	for _, h := range habits {
		snap, err := ctx.Ledger().Snapshot(h)
		if err != nil {
			return err
		}
		s := metrics.CompletionPercentage(h, snap, from, to, loc)
		ctx.Printf("%-20s %5.1f%%  %s\n", h.Name, s.Percentage,
			cli.MutedStyle.Render(fmt.Sprintf("%d/%d scheduled days", s.CompletedDays, s.ScheduledDays)))
	}
	return nil
}

type LogCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: all habits)."`
	Days  int    `short:"n" help:"Number of days to show." default:"14"`
}

const nameWidth = 20

func (c *LogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return errors.Invalid("days must be at least 1")
	}
	if err := ctx.Open(); err != nil {
		return err
	}
	habits, err := selectHabits(ctx, c.Habit)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Printf("No habits found.\n")
		return nil
	}

	loc := ctx.Location()
	end := ctx.Today()
	start := utils.AddDays(end, -(c.Days - 1))

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", nameWidth))
	for day := start; !day.After(end); day = utils.AddDays(day, 1) {
		header.WriteString(" " + day.Format("Mon")[:2])
	}
	ctx.Printf("%s\n", cli.MutedStyle.Render(header.String()))

	for _, h := range habits {
		snap, err := ctx.Ledger().Snapshot(h)
		if err != nil {
			return err
		}

		var row strings.Builder
		row.WriteString(pad(h.Name))
		for day := start; !day.After(end); day = utils.AddDays(day, 1) {
			row.WriteString("  " + cell(h, snap.Progress(utils.DateKey(day, loc)), snap.IsCompleted(utils.DateKey(day, loc)), schedule.IsScheduled(h, day)))
		}
		ctx.Printf("%s\n", row.String())
	}

	ctx.Printf("\n%s done  %s partial  %s missed\n", cli.DoneCell.String(), cli.PartialCell.String(), cli.MissedCell.String())
	return nil
}

func cell(h models.Habit, progress int, completed, scheduled bool) string {
	switch {
	case completed:
		return cli.DoneCell.String()
	case progress > 0 && h.Kind == constants.HabitKindFormation:
		return cli.PartialCell.String()
	case scheduled:
		return cli.MissedCell.String()
	default:
		return cli.OffCell.String()
	}
}

func pad(name string) string {
	r := []rune(name)
	if len(r) > nameWidth-1 {
		return string(r[:nameWidth-4]) + "... "
	}
	return name + strings.Repeat(" ", nameWidth-len(r))
}
