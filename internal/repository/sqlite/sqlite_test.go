package sqlite

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	"graphtools/internal/domain"
	"graphtools/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// newRun builds a finished run starting at start
func newRun(tool string, start time.Time, err error) *domain.Run {
	run := &domain.Run{
		Tool:      tool,
		Input:     "/data/" + tool + ".graph",
		Output:    "/data/" + tool + ".bgf",
		N:         4,
		M:         8,
		Digest:    "abc123",
		StartedAt: start,
	}
	run.Finish(err)
	run.FinishedAt = start.Add(time.Second)
	return run
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid", sql.NullString{String: "out.graph", Valid: true}, "out.graph"},
		{"null", sql.NullString{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestIDNullRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		id    domain.ID
		valid bool
	}{
		{"zero", 0, true},
		{"regular", 41, true},
		{"above int64", 1 << 63, true},
		{"no node", domain.NoNode, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ni := idToNull(tt.id)
			assertEqual(t, tt.valid, ni.Valid)
			assertEqual(t, tt.id, nullToID(ni))
		})
	}
}

func TestTimeToNull(t *testing.T) {
	if timeToNull(time.Time{}).Valid {
		t.Error("zero time should be stored as NULL")
	}

	now := time.Now()
	nt := timeToNull(now)
	if !nt.Valid || !nt.Time.Equal(now) {
		t.Errorf("timeToNull(%v) = %v", now, nt)
	}
	if !nullToTime(nt).Equal(now) {
		t.Errorf("nullToTime round trip lost the time")
	}
}

func TestDiagnosticRowToDomain(t *testing.T) {
	row := diagnosticRow{
		Kind:     string(domain.KindMissingReverseEdge),
		Severity: string(domain.SeverityError),
		Node:     sql.NullInt64{Int64: 0, Valid: true},
		Neighbor: sql.NullInt64{},
		Value:    5,
		Message:  sql.NullString{String: "missing reverse edge", Valid: true},
	}

	d := row.toDomain()
	assertEqual(t, domain.KindMissingReverseEdge, d.Kind)
	assertEqual(t, domain.ID(0), d.Node)
	assertEqual(t, domain.NoNode, d.Neighbor)
	assertEqual(t, int64(5), d.Value)
	assertEqual(t, "missing reverse edge", d.Message)
}

// ============================================================================
// Run Tests
// ============================================================================

func TestRecordAndGetRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := newRun("chkmetis", start, &domain.ValidationError{})
	run.Diagnostics = []domain.Diagnostic{
		domain.NewDiagnostic(domain.KindMissingReverseEdge, 0, 1, 5, "missing reverse edge"),
		domain.NewDiagnostic(domain.KindHeaderMismatch, domain.NoNode, domain.NoNode, 7, "edge count").AsWarning(),
	}

	assertNoError(t, repo.RecordRun(ctx, run))
	if run.ID == "" {
		t.Fatal("RecordRun should assign an id")
	}

	got, err := repo.GetRun(ctx, run.ID)
	assertNoError(t, err)
	if got == nil {
		t.Fatal("expected run, got nil")
	}

	assertEqual(t, run.ID, got.ID)
	assertEqual(t, "chkmetis", got.Tool)
	assertEqual(t, run.Input, got.Input)
	assertEqual(t, run.Output, got.Output)
	assertEqual(t, domain.OutcomeValidationFailed, got.Outcome)
	assertEqual(t, run.Error, got.Error)
	assertEqual(t, uint64(4), got.N)
	assertEqual(t, uint64(8), got.M)
	assertEqual(t, "abc123", got.Digest)
	if !got.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, start)
	}
	assertEqual(t, time.Second, got.Duration())
	assertEqual(t, run.Diagnostics, got.Diagnostics)
}

func TestRecordRunKeepsLargeCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := newRun("statmetis", time.Now(), nil)
	run.N = 1<<64 - 2
	run.M = 1 << 63
	assertNoError(t, repo.RecordRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	assertNoError(t, err)
	assertEqual(t, run.N, got.N)
	assertEqual(t, run.M, got.M)
}

func TestRecordRunRejectsDuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := newRun("metis2binary", time.Now(), nil)
	assertNoError(t, repo.RecordRun(ctx, run))

	if err := repo.RecordRun(ctx, run); err == nil {
		t.Fatal("expected error recording the same run twice")
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetRun(context.Background(), "missing")
	assertNoError(t, err)
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestListRuns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assertNoError(t, repo.RecordRun(ctx, newRun("chkmetis", base, nil)))
	assertNoError(t, repo.RecordRun(ctx, newRun("metis2binary", base.Add(time.Minute), nil)))
	assertNoError(t, repo.RecordRun(ctx, newRun("chkmetis", base.Add(2*time.Minute), &domain.ValidationError{})))

	t.Run("newest first", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, repository.RunFilter{})
		assertNoError(t, err)
		assertEqual(t, 3, len(runs))
		assertEqual(t, "chkmetis", runs[0].Tool)
		assertEqual(t, "metis2binary", runs[1].Tool)
		if runs[0].Diagnostics != nil {
			t.Error("ListRuns should not load diagnostics")
		}
	})

	t.Run("by tool", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, repository.RunFilter{Tool: "chkmetis"})
		assertNoError(t, err)
		assertEqual(t, 2, len(runs))
	})

	t.Run("by outcome", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, repository.RunFilter{Outcome: domain.OutcomeValidationFailed})
		assertNoError(t, err)
		assertEqual(t, 1, len(runs))
		assertEqual(t, domain.OutcomeValidationFailed, runs[0].Outcome)
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, repository.RunFilter{Limit: 1})
		assertNoError(t, err)
		assertEqual(t, 1, len(runs))
	})
}

func TestDeleteRunCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := newRun("chkmetis", time.Now(), nil)
	run.Diagnostics = []domain.Diagnostic{
		domain.NewDiagnostic(domain.KindSelfLoop, 2, 2, 0, "self-loop"),
	}
	assertNoError(t, repo.RecordRun(ctx, run))
	assertNoError(t, repo.DeleteRun(ctx, run.ID))

	got, err := repo.GetRun(ctx, run.ID)
	assertNoError(t, err)
	if got != nil {
		t.Fatal("run should be deleted")
	}

	var count int
	err = repo.db.QueryRow(`SELECT COUNT(*) FROM run_diagnostics WHERE run_id = ?`, run.ID).Scan(&count)
	assertNoError(t, err)
	assertEqual(t, 0, count)
}

func TestFileDatabasePersists(t *testing.T) {
	path := t.TempDir() + "/runs.db"
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	run := newRun("trimmetis", time.Now(), nil)
	assertNoError(t, repo.RecordRun(ctx, run))
	assertNoError(t, repo.Close())

	repo, err = New(path)
	assertNoError(t, err)
	defer repo.Close()

	got, err := repo.GetRun(ctx, run.ID)
	assertNoError(t, err)
	if got == nil {
		t.Fatal("run should survive reopening the database")
	}
}
