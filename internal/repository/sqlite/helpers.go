package sqlite

import (
	"database/sql"
	"time"

	"graphtools/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToTime converts sql.NullTime to time.Time, zero when NULL
func nullToTime(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// nullToID converts a nullable column back to a node id, NoNode when NULL
func nullToID(ni sql.NullInt64) domain.ID {
	if ni.Valid {
		return domain.ID(ni.Int64)
	}
	return domain.NoNode
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeToNull stores the zero time as NULL
func timeToNull(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// idToNull stores NoNode as NULL
func idToNull(id domain.ID) sql.NullInt64 {
	if id == domain.NoNode {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the runs table:
// 1. Add field to runRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update runColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Run
// 5. Update runInsertArgs() and the INSERT in RecordRun
// 6. Add the column to the schema in sqlite.go migrate()
// 7. Update relevant tests
//
// CRITICAL: Column order must match between:
// - runColumns constant
// - scanArgs() return slice
// - All SELECT queries using runColumns
//
// Same pattern applies to diagnostics.
//
// Counts are uint64 in the domain and stored as their int64 bit pattern,
// so values above MaxInt64 survive a round trip.

// ============================================================================
// Run Row Scanner
// ============================================================================

// runRow holds all columns from a run query for scanning
type runRow struct {
	ID         string
	Tool       string
	Input      string
	Output     sql.NullString
	Outcome    string
	Error      sql.NullString
	N          int64
	M          int64
	Digest     sql.NullString
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match runColumns order exactly:
// id, tool, input, output, outcome, error, n, m, digest, started_at, finished_at
func (r *runRow) scanArgs() []any {
	return []any{
		&r.ID,         // 1
		&r.Tool,       // 2
		&r.Input,      // 3
		&r.Output,     // 4
		&r.Outcome,    // 5
		&r.Error,      // 6
		&r.N,          // 7
		&r.M,          // 8
		&r.Digest,     // 9
		&r.StartedAt,  // 10
		&r.FinishedAt, // 11
	}
}

// toDomain converts the scanned row to a domain.Run
func (r *runRow) toDomain() *domain.Run {
	return &domain.Run{
		ID:         r.ID,
		Tool:       r.Tool,
		Input:      r.Input,
		Output:     nullToString(r.Output),
		Outcome:    domain.Outcome(r.Outcome),
		Error:      nullToString(r.Error),
		N:          uint64(r.N),
		M:          uint64(r.M),
		Digest:     nullToString(r.Digest),
		StartedAt:  r.StartedAt,
		FinishedAt: nullToTime(r.FinishedAt),
	}
}

// runColumns returns the SELECT column list for run queries
const runColumns = `id, tool, input, output, outcome, error, n, m, digest, started_at, finished_at`

// runInsertArgs prepares arguments for run INSERT
// Returns: id, tool, input, output, outcome, error, n, m, digest, started_at, finished_at
func runInsertArgs(run *domain.Run) []any {
	return []any{
		run.ID,
		run.Tool,
		run.Input,
		stringToNull(run.Output),
		string(run.Outcome),
		stringToNull(run.Error),
		int64(run.N),
		int64(run.M),
		stringToNull(run.Digest),
		run.StartedAt.UTC(),
		timeToNull(run.FinishedAt),
	}
}

// ============================================================================
// Diagnostic Row Scanner
// ============================================================================

// diagnosticRow holds all columns from a diagnostic query for scanning
type diagnosticRow struct {
	Kind     string
	Severity string
	Node     sql.NullInt64
	Neighbor sql.NullInt64
	Value    int64
	Message  sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match diagnosticColumns order exactly:
// kind, severity, node, neighbor, value, message
func (r *diagnosticRow) scanArgs() []any {
	return []any{
		&r.Kind,     // 1
		&r.Severity, // 2
		&r.Node,     // 3
		&r.Neighbor, // 4
		&r.Value,    // 5
		&r.Message,  // 6
	}
}

// toDomain converts the scanned row to a domain.Diagnostic
func (r *diagnosticRow) toDomain() domain.Diagnostic {
	return domain.Diagnostic{
		Kind:     domain.DiagnosticKind(r.Kind),
		Severity: domain.Severity(r.Severity),
		Node:     nullToID(r.Node),
		Neighbor: nullToID(r.Neighbor),
		Value:    r.Value,
		Message:  nullToString(r.Message),
	}
}

// diagnosticColumns returns the SELECT column list for diagnostic queries
const diagnosticColumns = `kind, severity, node, neighbor, value, message`

// diagnosticInsertArgs prepares arguments for diagnostic INSERT
// Returns: run_id, seq, kind, severity, node, neighbor, value, message
func diagnosticInsertArgs(runID string, seq int, d domain.Diagnostic) []any {
	return []any{
		runID,
		seq,
		string(d.Kind),
		string(d.Severity),
		idToNull(d.Node),
		idToNull(d.Neighbor),
		d.Value,
		stringToNull(d.Message),
	}
}
