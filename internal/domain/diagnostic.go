package domain

import (
	"fmt"
	"strings"
)

// DiagnosticKind classifies a structural violation
type DiagnosticKind string

const (
	KindIDOverflow             DiagnosticKind = "IDOverflow"
	KindHeaderMismatch         DiagnosticKind = "HeaderMismatch"
	KindTooManyEdges           DiagnosticKind = "TooManyEdges"
	KindNeighborOutOfRange     DiagnosticKind = "NeighborOutOfRange"
	KindSelfLoop               DiagnosticKind = "SelfLoop"
	KindDuplicateEdge          DiagnosticKind = "DuplicateEdge"
	KindMissingReverseEdge     DiagnosticKind = "MissingReverseEdge"
	KindMissingForwardEdge     DiagnosticKind = "MissingForwardEdge"
	KindAsymmetricWeight       DiagnosticKind = "AsymmetricWeight"
	KindNegativeWeight         DiagnosticKind = "NegativeWeight"
	KindWeightOverflow         DiagnosticKind = "WeightOverflow"
	KindAssignmentOutOfBounds  DiagnosticKind = "AssignmentOutOfBounds"
	KindAssignmentSizeMismatch DiagnosticKind = "AssignmentSizeMismatch"
)

// Severity decides whether a diagnostic fails a check
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one violation found while checking a graph.
// Node and Neighbor are 0-based; NoNode marks an unused slot.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Severity Severity       `json:"severity"`
	Node     ID             `json:"node"`
	Neighbor ID             `json:"neighbor"`
	Value    int64          `json:"value"`
	Message  string         `json:"message"`
}

// NewDiagnostic creates an error-severity diagnostic
func NewDiagnostic(kind DiagnosticKind, node, neighbor ID, value int64, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Node:     node,
		Neighbor: neighbor,
		Value:    value,
		Message:  fmt.Sprintf(format, args...),
	}
}

// AsWarning returns a copy with warning severity
func (d Diagnostic) AsWarning() Diagnostic {
	d.Severity = SeverityWarning
	return d
}

// IsError reports whether the diagnostic fails a check
func (d Diagnostic) IsError() bool {
	return d.Severity != SeverityWarning
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Severity))
	b.WriteString(": ")
	b.WriteString(string(d.Kind))
	if d.Node != NoNode {
		fmt.Fprintf(&b, " node=%d", d.Node+1)
	}
	if d.Neighbor != NoNode {
		fmt.Fprintf(&b, " neighbor=%d", d.Neighbor+1)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// CountErrors returns how many diagnostics have error severity
func CountErrors(diags []Diagnostic) int {
	count := 0
	for _, d := range diags {
		if d.IsError() {
			count++
		}
	}
	return count
}
