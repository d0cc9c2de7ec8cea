package system

import (
	stderrors "errors"
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check the OS keyring and stored credentials."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
}

// KeyringSetCmd stores the database connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return stderrors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Printf("%s\n", cli.WarningStyle.Render("Warning: connection string contains embedded credentials."))
		ctx.Printf("   It will be stored as-is in the encrypted OS keyring.\n")
	}

	if err := keyring.ConnectionString.Set(cmd.ConnectionString); err != nil {
		return err
	}

	ctx.Printf("✓ Connection string stored in OS keyring\n")
	ctx.Printf("  tally will use it when --config is not given\n")
	return nil
}

// KeyringStatusCmd reports whether the OS keyring is usable
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Printf("❌ OS keyring is not available on this system\n")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Printf("✓ OS keyring is available\n")

	connStr, err := keyring.ConnectionString.Get()
	switch {
	case err == nil:
		ctx.Printf("✓ Connection string is stored: %s\n", postgres.Redact(connStr))
	case stderrors.Is(err, keyring.ErrNotFound):
		ctx.Printf("ℹ No connection string stored in keyring\n")
	default:
		return err
	}
	return nil
}

// KeyringDeleteCmd removes the connection string from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.ConnectionString.Delete(); err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return stderrors.New("no connection string found in keyring")
		}
		return err
	}
	ctx.Printf("✓ Connection string deleted from OS keyring\n")
	return nil
}
