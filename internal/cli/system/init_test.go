package system

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

func setupInitContext(t *testing.T) (*cli.Context, string, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tally.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	ctx := cli.NewContext(store)
	ctx.Out = &out
	ctx.SetClock(func() time.Time { return time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC) })
	return ctx, dbPath, &out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, _ := setupInitContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if settings.Timezone != "Local" || settings.OwnerID != "guest" {
		t.Errorf("unexpected default settings: %+v", settings)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupInitContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestInitCmd_SavesSettings(t *testing.T) {
	ctx, _, _ := setupInitContext(t)

	cmd := &InitCmd{Timezone: "America/New_York", Owner: "acct-1"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if settings.Timezone != "America/New_York" || settings.OwnerID != "acct-1" {
		t.Errorf("settings not saved: %+v", settings)
	}
	if ctx.OwnerID() != "acct-1" {
		t.Errorf("context owner = %q, want acct-1", ctx.OwnerID())
	}
}

func TestInitCmd_RejectsBadTimezone(t *testing.T) {
	ctx, _, _ := setupInitContext(t)

	if err := (&InitCmd{Timezone: "Nowhere/Special"}).Run(ctx); err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}

func TestInitCmd_ForceRecreates(t *testing.T) {
	ctx, _, _ := setupInitContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := ctx.Habits().Create(models.Habit{Name: "Stretch"}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
	habits, err := ctx.Habits().List(ctx.OwnerID(), true)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected empty database after --force, got %d habits", len(habits))
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	src, _, _ := setupInitContext(t)
	if err := (&InitCmd{}).Run(src); err != nil {
		t.Fatalf("source init failed: %v", err)
	}
	habit, err := src.Habits().Create(models.Habit{Name: "Walk"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := src.Ledger().SetProgress(habit, src.Today(), 1); err != nil {
		t.Fatalf("failed to set progress: %v", err)
	}
	srcPath := src.Store.GetConfigPath()
	if err := src.Store.Close(); err != nil {
		t.Fatalf("failed to close source: %v", err)
	}

	dst, _, out := setupInitContext(t)
	if err := (&InitCmd{Source: srcPath}).Run(dst); err != nil {
		t.Fatalf("init with source failed: %v\n%s", err, out.String())
	}

	copied, err := dst.Habits().Get(habit.ID)
	if err != nil {
		t.Fatalf("habit not copied: %v", err)
	}
	done, err := dst.Ledger().IsCompleted(copied, dst.Today())
	if err != nil {
		t.Fatalf("IsCompleted failed: %v", err)
	}
	if !done {
		t.Error("completion entry not copied")
	}
}
