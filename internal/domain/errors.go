package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO covers unreadable files and mapping failures
	ErrIO = errors.New("i/o error")
	// ErrInputNotFound is returned when an input path does not exist
	ErrInputNotFound = errors.New("input not found")
	// ErrMalformedHeader is returned when a header does not match its grammar
	ErrMalformedHeader = errors.New("malformed header")
	// ErrUnexpectedToken is returned when the byte stream does not match the expected grammar
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrEndOfInput is returned when a read runs past the end of the input
	ErrEndOfInput = errors.New("unexpected end of input")
	// ErrStructural is returned when a graph violates a consistency rule
	ErrStructural = errors.New("structural violation")
	// ErrEncodingRange is returned when a value does not fit the output datatype
	ErrEncodingRange = errors.New("value out of encoding range")
	// ErrUsage is returned for invalid invocations
	ErrUsage = errors.New("usage error")
)

// ParseError locates a decoder failure in its input
type ParseError struct {
	Path   string
	Offset int
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "offset %d: %v", e.Offset, e.Err)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports the diagnostics that failed a check
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e *ValidationError) Error() string {
	switch len(e.Diagnostics) {
	case 0:
		return ErrStructural.Error()
	case 1:
		return fmt.Sprintf("%v: %s", ErrStructural, e.Diagnostics[0])
	default:
		return fmt.Sprintf("%v: %s (and %d more)", ErrStructural, e.Diagnostics[0], len(e.Diagnostics)-1)
	}
}

func (e *ValidationError) Unwrap() error {
	return ErrStructural
}

// Outcome is the externally visible result class of a tool run
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeFailure          Outcome = "failure"
	OutcomeUsage            Outcome = "usage"
	OutcomeInputNotFound    Outcome = "input_not_found"
	OutcomeMalformedInput   Outcome = "malformed_input"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeEncodingRange    Outcome = "encoding_range"
)

// Classify maps an error onto its outcome
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUsage):
		return OutcomeUsage
	case errors.Is(err, ErrInputNotFound):
		return OutcomeInputNotFound
	case errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrUnexpectedToken),
		errors.Is(err, ErrEndOfInput):
		return OutcomeMalformedInput
	case errors.Is(err, ErrStructural):
		return OutcomeValidationFailed
	case errors.Is(err, ErrEncodingRange):
		return OutcomeEncodingRange
	default:
		return OutcomeFailure
	}
}

// ExitCode returns the process exit status for an outcome
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return 0
	case OutcomeUsage:
		return 2
	case OutcomeInputNotFound:
		return 3
	case OutcomeMalformedInput:
		return 4
	case OutcomeValidationFailed:
		return 5
	case OutcomeEncodingRange:
		return 6
	default:
		return 1
	}
}
