package repository

import (
	"context"

	"graphtools/internal/domain"
)

// RunFilter narrows ListRuns
type RunFilter struct {
	Tool    string         // empty matches every tool
	Outcome domain.Outcome // empty matches every outcome
	Limit   int            // 0 means no limit
}

// Repository persists the run catalog
type Repository interface {
	// RecordRun stores a finished run and its diagnostics. An empty
	// run ID is replaced by a generated one.
	RecordRun(ctx context.Context, run *domain.Run) error

	// GetRun returns a run with its diagnostics, or nil if not found
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns runs newest first, without diagnostics
	ListRuns(ctx context.Context, filter RunFilter) ([]domain.Run, error)

	// DeleteRun removes a run and its diagnostics
	DeleteRun(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
