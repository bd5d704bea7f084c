package validate

import (
	"github.com/hashicorp/go-multierror"

	"graphtools/internal/domain"
)

// Report is the outcome of checking one graph
type Report struct {
	Path   string
	Header domain.Header
	// Nodes is the number of node lines observed in the body
	Nodes uint64
	// Edges is the number of directed edge records observed in the body
	Edges           uint64
	TotalNodeWeight domain.Weight
	TotalEdgeWeight domain.Weight
	Diagnostics     []domain.Diagnostic
}

// Errors returns the number of error-severity diagnostics
func (r *Report) Errors() int {
	return domain.CountErrors(r.Diagnostics)
}

// Warnings returns the number of warning-severity diagnostics
func (r *Report) Warnings() int {
	return len(r.Diagnostics) - r.Errors()
}

// Valid reports whether no diagnostic failed the check
func (r *Report) Valid() bool {
	return r.Errors() == 0
}

// Count returns how many diagnostics of kind were recorded
func (r *Report) Count(kind domain.DiagnosticKind) int {
	count := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			count++
		}
	}
	return count
}

// Err aggregates every error-severity diagnostic, or returns nil.
// Each aggregated error matches domain.ErrStructural.
func (r *Report) Err() error {
	return diagnosticsError(r.Diagnostics)
}

func diagnosticsError(diags []domain.Diagnostic) error {
	var result *multierror.Error
	for _, d := range diags {
		if d.IsError() {
			result = multierror.Append(result, &domain.ValidationError{Diagnostics: []domain.Diagnostic{d}})
		}
	}
	return result.ErrorOrNil()
}
