package system

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/postgres"
	"github.com/julianstephens/tally/internal/storage/sqlite"
	"github.com/julianstephens/tally/internal/utils"
)

type InitCmd struct {
	Force    bool   `help:"Delete an existing SQLite database before initialization."`
	Source   string `help:"Source database path or connection string to copy habits and entries from."`
	Timezone string `help:"IANA time zone used for date keys (default: system time zone)."`
	Owner    string `help:"Account id that owns new habits (default: guest)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Timezone != "" || c.Owner != "" {
		if err := c.saveSettings(ctx); err != nil {
			return err
		}
	}

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", postgres.Redact(c.Source))
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Printf("Copy completed successfully!\n")
	}

	return ctx.Setup()
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if dbPath == "postgresql" {
		return errors.Invalid("--force is only supported for SQLite databases")
	}
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return errors.Invalid("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) saveSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if c.Timezone != "" {
		if !utils.ValidateTimezone(c.Timezone) {
			return errors.Invalid("unknown time zone %q", c.Timezone)
		}
		settings.Timezone = c.Timezone
	}
	if c.Owner != "" {
		settings.OwnerID = c.Owner
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	var source storage.Provider
	if postgres.IsConnString(c.Source) {
		if ok, err := postgres.ValidateConnString(c.Source); !ok {
			if stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
		source = postgres.New(c.Source)
	} else {
		path, err := utils.ExpandPath(c.Source)
		if err != nil {
			return err
		}
		source = sqlite.NewStore(path)
	}

	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	ctx.Printf("  Copying settings...\n")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	entries, err := source.GetAllEntries()
	if err != nil {
		return fmt.Errorf("failed to get entries from source: %w", err)
	}

	ctx.Printf("  Copying habits...\n")
	count := 0
	for _, owner := range owners(settings, entries) {
		habits, err := source.GetAllHabits(owner, true)
		if err != nil {
			return fmt.Errorf("failed to get habits of %s from source: %w", owner, err)
		}
		for _, h := range habits {
			if err := ctx.Store.AddHabit(h); err != nil {
				return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
			}
			count++
		}
	}
	ctx.Printf("    Copied %d habits\n", count)

	ctx.Printf("  Copying completion entries...\n")
	for _, e := range entries {
		if err := ctx.Store.UpsertEntry(e); err != nil {
			return fmt.Errorf("failed to add entry %s/%s: %w", e.HabitID, e.DateKey, err)
		}
	}
	ctx.Printf("    Copied %d entries\n", len(entries))
	return nil
}

// owners lists every account that may own habits in the source
func owners(settings models.Settings, entries []models.CompletionEntry) []string {
	list := []string{constants.GuestOwnerID}
	add := func(id string) {
		if id != "" && !slices.Contains(list, id) {
			list = append(list, id)
		}
	}
	add(settings.OwnerID)
	for _, e := range entries {
		add(e.OwnerID)
	}
	return list
}
