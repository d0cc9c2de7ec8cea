package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/backup"
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
	"github.com/julianstephens/tally/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly failures do not fail the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Clock/timezone", run: checkClock},
	{name: "Habit integrity", needsDB: true, run: checkHabits},
	{name: "Completion entries", needsDB: true, run: checkEntries},
	{name: "Sync backlog", needsDB: true, warnOnly: true, run: checkSyncBacklog},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Running diagnostics...\n\n")

	failed := 0
	reachable := true
	if err := ctx.Store.Load(); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		reachable = false
		failed++
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed++
		}
	}

	ctx.Printf("\n")
	if failed > 0 {
		return fmt.Errorf("%d diagnostic check(s) failed", failed)
	}
	ctx.Printf("%s\n", cli.SuccessStyle.Render("All checks passed."))
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("database is at version %d, this binary ships %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if path == "postgresql" {
		return nil
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, run 'tally backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("stored time zone %q is not a valid IANA name", settings.Timezone)
	}
	if settings.OwnerID == "" {
		return fmt.Errorf("no owner configured")
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

// ownerHabits returns the configured owner and all of their habits,
// deleted ones included
func ownerHabits(ctx *cli.Context) (string, []models.Habit, error) {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return "", nil, err
	}
	owner := settings.OwnerID
	if owner == "" {
		owner = constants.GuestOwnerID
	}
	habits, err := ctx.Store.GetAllHabits(owner, true)
	return owner, habits, err
}

func checkHabits(ctx *cli.Context) error {
	_, habits, err := ownerHabits(ctx)
	if err != nil {
		return err
	}
	result := validation.ValidateHabits(habits)
	if result.HasConflicts() {
		return fmt.Errorf("%s", result.FormatReport())
	}
	return nil
}

func checkEntries(ctx *cli.Context) error {
	owner, habits, err := ownerHabits(ctx)
	if err != nil {
		return err
	}
	entries, err := ctx.Store.GetAllEntries()
	if err != nil {
		return err
	}

	var owned []models.CompletionEntry
	for _, e := range entries {
		if e.OwnerID == owner {
			owned = append(owned, e)
		}
	}
	result := validation.ValidateEntries(owned, habits)
	if result.HasConflicts() {
		return fmt.Errorf("%s", result.FormatReport())
	}

	for _, e := range owned {
		if !utils.ValidateDateKey(e.DateKey) {
			return fmt.Errorf("entry %s has malformed date key %q", e.ID, e.DateKey)
		}
		if e.Progress < 0 {
			return fmt.Errorf("entry %s/%s has negative progress", e.HabitID, e.DateKey)
		}
	}
	return nil
}

func checkSyncBacklog(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	pending, err := ctx.Store.FetchUnsynced(settings.OwnerID)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("%d entries are waiting to be synced", len(pending))
	}
	return nil
}
