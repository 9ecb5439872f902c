package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	"github.com/yungbote/gradebridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
)

func newMaintenanceFixture(t *testing.T) (MaintenanceService, repos.EvaluationRepo) {
	t.Helper()
	gdb := testutil.SQLite(t, true)
	log := testutil.Logger(t)
	evals := repos.NewEvaluationRepo(gdb, log)
	return NewMaintenanceService(gdb, log, evals, repos.NewGuidelineRepo(gdb, log)), evals
}

func TestSeedAndStats(t *testing.T) {
	svc, _ := newMaintenanceFixture(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx)
	if err != nil || n != 20 {
		t.Fatalf("Seed: want=20 got=%d err=%v", n, err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := StatsReport{Total: 20, UniqueStudents: 8, UniqueTopics: 5}
	if stats != want {
		t.Fatalf("Stats: want=%+v got=%+v", want, stats)
	}
}

func TestClearTestDataKeepsRealRecords(t *testing.T) {
	svc, evals := newMaintenanceFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	real := &types.EvaluationRecord{Topic: "Thermodynamics", StudentName: "Ravi Kumar", Score: "6", Grade: "C"}
	if _, err := evals.Append(dbc, real); err != nil {
		t.Fatalf("Append: %v", err)
	}

	deleted, err := svc.ClearTestData(ctx)
	if err != nil || deleted != 20 {
		t.Fatalf("ClearTestData: want=20 got=%d err=%v", deleted, err)
	}
	left := svc.View(ctx)
	if len(left) != 1 || left[0].StudentName != "Ravi Kumar" {
		t.Fatalf("remaining: got=%+v", left)
	}
}

func TestClearByCutoff(t *testing.T) {
	svc, evals := newMaintenanceFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{old, recent} {
		if _, err := evals.Append(dbc, &types.EvaluationRecord{Topic: "t", StudentName: "s", CreatedAt: at}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if n, err := svc.ClearAfter(ctx, cutoff); err != nil || n != 1 {
		t.Fatalf("ClearAfter: want=1 got=%d err=%v", n, err)
	}
	if n, err := svc.ClearBefore(ctx, cutoff); err != nil || n != 1 {
		t.Fatalf("ClearBefore: want=1 got=%d err=%v", n, err)
	}
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n, err := svc.ClearAll(ctx); err != nil || n != 20 {
		t.Fatalf("ClearAll: want=20 got=%d err=%v", n, err)
	}
}

func TestDiagnoseSQLite(t *testing.T) {
	svc, _ := newMaintenanceFixture(t)
	ctx := context.Background()
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	report := svc.Diagnose(ctx)
	if report.Driver != "sqlite" {
		t.Fatalf("driver: got=%q", report.Driver)
	}
	if len(report.Tables) != len(DiagnosedTables) {
		t.Fatalf("tables: want=%d got=%d", len(DiagnosedTables), len(report.Tables))
	}
	byName := map[string]TableReport{}
	for _, tr := range report.Tables {
		byName[tr.Name] = tr
	}
	if ev := byName["evaluations"]; !ev.Exists || ev.Rows != 20 || len(ev.Columns) == 0 {
		t.Fatalf("evaluations report: got=%+v", ev)
	}
	if !byName["assignments"].Exists {
		t.Fatalf("assignments should exist")
	}
	if byName["grades"].Exists {
		t.Fatalf("grades should not exist")
	}
	if report.MatchFunction {
		t.Fatalf("sqlite cannot carry the similarity function")
	}
}
