// Package repository defines the data access interface for the run catalog.
//
// Every tool invocation can be recorded as a domain.Run: the tool name,
// input and output paths, the outcome, the header that was written, a
// digest of the output and any diagnostics the validator produced. The
// catalog lets repeated conversions of large graphs be compared and
// audited after the fact.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Repository on SQLite with WAL mode.
// It handles:
//
// - Schema creation on open
// - Cascade deletes from runs to their diagnostics
// - Transactional inserts of a run and its diagnostics
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
