package progress

import (
	"strings"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
)

type SyncCmd struct {
	Pending SyncPendingCmd `cmd:"" help:"List completion entries waiting to be synced." default:"1"`
	Ack     SyncAckCmd     `cmd:"" help:"Acknowledge that pending entries were synced."`
}

type SyncPendingCmd struct{}

func (c *SyncPendingCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	pending, err := ctx.Ledger().Pending(ctx.OwnerID())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		ctx.Printf("Nothing to sync.\n")
		return nil
	}

	names, err := habitNames(ctx)
	if err != nil {
		return err
	}
	ctx.Printf("%d entries waiting to be synced:\n\n", len(pending))
	for _, e := range pending {
		name := names[e.HabitID]
		if name == "" {
			name = e.HabitID
		}
		ctx.Printf("  %s  %-20s progress=%d completed=%t\n", e.DateKey, name, e.Progress, e.Completed)
	}
	return nil
}

type SyncAckCmd struct {
	Habit string   `arg:"" optional:"" help:"Only acknowledge entries of this habit."`
	Days  []string `short:"d" help:"Only acknowledge these date keys."`
}

// Run clears the sync marker of the entries pending when it reads them.
// Entries edited after that read stay pending.
func (c *SyncAckCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	pending, err := ctx.Ledger().Pending(ctx.OwnerID())
	if err != nil {
		return err
	}

	habitID := ""
	if c.Habit != "" {
		h, err := ctx.Habits().Resolve(ctx.OwnerID(), c.Habit, true)
		if err != nil {
			return err
		}
		habitID = h.ID
	}
	days := make(map[string]bool, len(c.Days))
	for _, d := range c.Days {
		days[strings.TrimSpace(d)] = true
	}

	byHabit := make(map[string][]models.CompletionEntry)
	for _, e := range pending {
		if habitID != "" && e.HabitID != habitID {
			continue
		}
		if len(days) > 0 && !days[e.DateKey] {
			continue
		}
		byHabit[e.HabitID] = append(byHabit[e.HabitID], e)
	}

	acked := 0
	for id, entries := range byHabit {
		habit := models.Habit{ID: id, OwnerID: entries[0].OwnerID}
		if err := ctx.Ledger().MarkSynced(habit, entries); err != nil {
			return err
		}
		acked += len(entries)
	}
	ctx.Printf("Acknowledged %d entries.\n", acked)
	return nil
}

func habitNames(ctx *cli.Context) (map[string]string, error) {
	habits, err := ctx.Habits().List(ctx.OwnerID(), true)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Name
	}
	return names, nil
}
