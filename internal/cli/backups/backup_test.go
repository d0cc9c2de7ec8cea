package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

func setupContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "tally.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(store)
	ctx.Out = &out
	ctx.Timezone = "UTC"
	ctx.SetClock(func() time.Time { return time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC) })
	if err := ctx.Open(); err != nil {
		t.Fatalf("failed to open context: %v", err)
	}
	return ctx, &out
}

func TestBackupListCmd_Empty(t *testing.T) {
	ctx, out := setupContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestBackupCreateAndRestore(t *testing.T) {
	ctx, out := setupContext(t)
	if _, err := ctx.Habits().Create(models.Habit{Name: "Keep"}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created: tally-") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 total") {
		t.Errorf("expected one backup:\n%s", out.String())
	}

	if _, err := ctx.Habits().Create(models.Habit{Name: "Discard"}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	mgr, err := manager(ctx)
	if err != nil {
		t.Fatalf("manager failed: %v", err)
	}
	backups, err := mgr.List()
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected one backup, got %d (%v)", len(backups), err)
	}

	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(backups[0].Path), Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if err := ctx.Open(); err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}

	habits, err := ctx.Habits().List(ctx.OwnerID(), true)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 1 || habits[0].Name != "Keep" {
		t.Errorf("restore did not roll back to the snapshot: %+v", habits)
	}
}

func TestBackupRestoreCmd_MissingFile(t *testing.T) {
	ctx, _ := setupContext(t)

	if err := (&BackupRestoreCmd{BackupFile: "tally-19990101-0000.db", Yes: true}).Run(ctx); err == nil {
		t.Fatal("expected error for a missing backup")
	}
}
