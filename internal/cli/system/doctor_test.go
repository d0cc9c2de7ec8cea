package system

import (
	"strings"
	"testing"

	"github.com/julianstephens/tally/internal/models"
)

func TestDoctorCmd_HealthyDatabase(t *testing.T) {
	ctx, _, out := setupInitContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on a fresh database: %v\n%s", err, out.String())
	}
	for _, want := range []string{"Database reachable: OK", "Schema version: OK", "Backups present: WARNING"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_ReportsSyncBacklog(t *testing.T) {
	ctx, _, out := setupInitContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	habit, err := ctx.Habits().Create(models.Habit{Name: "Floss"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := ctx.Ledger().SetProgress(habit, ctx.Today(), 1); err != nil {
		t.Fatalf("failed to set progress: %v", err)
	}
	out.Reset()

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("a sync backlog should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "1 entries are waiting to be synced") {
		t.Errorf("backlog not reported:\n%s", out.String())
	}
}

func TestDoctorCmd_UninitializedDatabase(t *testing.T) {
	ctx, _, out := setupInitContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("expected doctor to fail without a database")
	}
	if !strings.Contains(out.String(), "Database reachable: FAIL") {
		t.Errorf("unreachable database not reported:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Schema version: SKIPPED") {
		t.Errorf("dependent checks not skipped:\n%s", out.String())
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _, out := setupInitContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database is up to date") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestMigrateCmd_Uninitialized(t *testing.T) {
	ctx, _, _ := setupInitContext(t)

	if err := (&MigrateCmd{}).Run(ctx); err == nil {
		t.Fatal("expected migrate to refuse a missing database")
	}
}
