package validate

import (
	"github.com/sirupsen/logrus"

	"graphtools/internal/domain"
)

// collector records diagnostics and decides when a check must stop
type collector struct {
	diags    *[]domain.Diagnostic
	failFast bool
	quiet    bool
	logger   logrus.FieldLogger
}

// add records d. In fail-fast mode an error-severity diagnostic is
// returned as a *domain.ValidationError and the caller stops.
func (c *collector) add(d domain.Diagnostic) error {
	*c.diags = append(*c.diags, d)

	if !c.quiet {
		entry := c.logger.WithField("kind", d.Kind)
		if d.IsError() {
			entry.Error(d.String())
		} else {
			entry.Warn(d.String())
		}
	}

	if c.failFast && d.IsError() {
		return &domain.ValidationError{Diagnostics: []domain.Diagnostic{d}}
	}
	return nil
}

// total accumulates non-negative weights without wrapping
type total struct {
	sum      domain.Weight
	overflow bool
}

func (t *total) add(w, limit domain.Weight) {
	if w <= 0 || t.overflow {
		return
	}
	if w > limit-t.sum {
		t.overflow = true
		return
	}
	t.sum += w
}
