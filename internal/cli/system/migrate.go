package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if path := ctx.Store.GetConfigPath(); path != "postgresql" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'tally init' first")
		}
	}
	defer ctx.Store.Close()

	count, err := ctx.Store.Migrate(func(msg string) {
		ctx.Printf("%s\n", msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Printf("No migrations to apply. Database is up to date.\n")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
