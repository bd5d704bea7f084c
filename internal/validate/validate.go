// Package validate checks that a METIS graph is a consistent, symmetric
// encoding of an undirected graph whose values fit the configured widths.
//
// Strict mode stops at the first error-severity diagnostic and returns it
// as a *domain.ValidationError. Permissive mode records every diagnostic
// and leaves the decision to the caller through Report.Err.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"graphtools/internal/codec"
	"graphtools/internal/config"
	"graphtools/internal/domain"
	"graphtools/internal/mmap"
	"graphtools/internal/progress"
	"graphtools/internal/scanner"
)

const (
	metisComment = '%'
	// cancellation is polled once per this many node lines or edges
	cancelEvery = 1 << 12
)

// Options configures a Validator
type Options struct {
	Mode config.CheckMode
	// AllowEdgeCountMismatch reports a declared/observed directed edge
	// count mismatch as a warning instead of an error
	AllowEdgeCountMismatch bool
	Limits                 domain.Limits
	// Quiet suppresses logging of individual diagnostics
	Quiet    bool
	Progress progress.Func
}

// Validator checks graphs against Options
type Validator struct {
	opts   Options
	logger logrus.FieldLogger
}

// New creates a validator. Zero limits select domain.DefaultLimits.
func New(opts Options, logger logrus.FieldLogger) *Validator {
	if opts.Limits == (domain.Limits{}) {
		opts.Limits = domain.DefaultLimits()
	}
	if opts.Mode == "" {
		opts.Mode = config.CheckStrict
	}
	return &Validator{opts: opts, logger: logger}
}

func (v *Validator) newCollector(diags *[]domain.Diagnostic) *collector {
	return &collector{
		diags:    diags,
		failFast: v.opts.Mode.FailFast(),
		quiet:    v.opts.Quiet,
		logger:   v.logger,
	}
}

// CheckFile validates the METIS graph at path.
//
// Parse failures are returned as errors matching the decoder sentinels.
// In strict mode the first violation is returned as an error together with
// the partial report; in permissive mode the error is nil and the report
// holds every diagnostic.
func (v *Validator) CheckFile(ctx context.Context, path string) (*Report, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report := &Report{Path: path}
	c := v.newCollector(&report.Diagnostics)

	edges, err := v.readGraph(ctx, scanner.New(f.Bytes()), report, c)
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return report, fmt.Errorf("check %s: %w", path, err)
	}

	if err := v.checkSymmetry(ctx, report.Header.N, edges, c); err != nil {
		return report, fmt.Errorf("check %s: %w", path, err)
	}

	v.logger.WithFields(logrus.Fields{
		"action":   "check",
		"input":    path,
		"errors":   report.Errors(),
		"warnings": report.Warnings(),
	}).Debug("graph checked")
	return report, nil
}

// CheckEdges validates an already decoded directed edge collection
// against header. observedNodes is the number of nodes the source
// actually contained. The collection is not modified.
func (v *Validator) CheckEdges(header domain.Header, edges []domain.Edge, observedNodes uint64) *Report {
	report := &Report{Header: header, Nodes: observedNodes, Edges: uint64(len(edges))}
	c := v.newCollector(&report.Diagnostics)
	ctx := context.Background()

	_ = v.checkEdges(ctx, header, edges, report, c)
	return report
}

func (v *Validator) checkEdges(ctx context.Context, header domain.Header, edges []domain.Edge, report *Report, c *collector) error {
	if err := v.checkHeader(header, c); err != nil {
		return err
	}

	limit := v.opts.Limits.MaxWeight()
	var edgeTotal total
	kept := make([]domain.Edge, 0, len(edges))
	for _, e := range edges {
		keep, err := v.checkRecord(header, e, c)
		if err != nil {
			return err
		}
		edgeTotal.add(e.Weight, limit)
		if keep {
			kept = append(kept, e)
		}
	}
	report.TotalEdgeWeight = edgeTotal.sum

	if err := v.checkCounts(header, report.Nodes, report.Edges, c); err != nil {
		return err
	}
	if err := v.checkTotal(edgeTotal, "edge", c); err != nil {
		return err
	}
	return v.checkSymmetry(ctx, header.N, kept, c)
}

// readGraph parses the file and applies every check except symmetry.
// It returns the in-range edges.
func (v *Validator) readGraph(ctx context.Context, s *scanner.Scanner, report *Report, c *collector) ([]domain.Edge, error) {
	h, err := codec.ReadMetisHeader(s)
	if err != nil {
		return nil, err
	}
	report.Header = h
	if err := v.checkHeader(h, c); err != nil {
		return nil, err
	}

	// every directed edge record takes at least two bytes
	edges := make([]domain.Edge, 0, min(h.M, uint64(s.Len()/2)))
	limit := v.opts.Limits.MaxWeight()
	ticker := progress.NewTicker(v.opts.Progress, 0)
	size := uint64(s.Len())
	var nodeTotal, edgeTotal total

	u := domain.ID(0)
	for ; u < h.N; u++ {
		s.SkipComments(metisComment)
		if !s.Valid() {
			break
		}
		if u%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if h.HasNodeWeights && !s.AtEOL() {
			weight, err := s.ScanInt(64)
			if err != nil {
				return nil, err
			}
			if err := v.checkNodeWeight(u, weight, c); err != nil {
				return nil, err
			}
			nodeTotal.add(weight, limit)
		}

		for s.AtDigit() || s.Is('-') {
			raw, err := s.ScanInt(64)
			if err != nil {
				return nil, err
			}
			weight := domain.Weight(1)
			if h.HasEdgeWeights {
				if weight, err = s.ScanInt(64); err != nil {
					return nil, err
				}
			}
			report.Edges++
			edgeTotal.add(weight, limit)

			if raw <= 0 {
				d := domain.NewDiagnostic(domain.KindNeighborOutOfRange, u, domain.NoNode, raw,
					"neighbor %d must be greater than 0", raw)
				if err := c.add(d); err != nil {
					return nil, err
				}
				continue
			}

			e := domain.Edge{From: u, To: domain.ID(raw - 1), Weight: weight}
			keep, err := v.checkRecord(h, e, c)
			if err != nil {
				return nil, err
			}
			if keep {
				edges = append(edges, e)
			}
			ticker.Tick(uint64(s.Pos()), size)
		}

		if err := s.EndLine(); err != nil {
			return nil, err
		}
	}
	report.Nodes = u
	report.Nodes += countTrailingLines(s)
	report.TotalNodeWeight = nodeTotal.sum
	report.TotalEdgeWeight = edgeTotal.sum
	ticker.Done(size)

	if err := v.checkCounts(h, report.Nodes, report.Edges, c); err != nil {
		return nil, err
	}
	if err := v.checkTotal(nodeTotal, "node", c); err != nil {
		return nil, err
	}
	if err := v.checkTotal(edgeTotal, "edge", c); err != nil {
		return nil, err
	}
	return edges, nil
}

// countTrailingLines counts non-blank, non-comment lines left in s
func countTrailingLines(s *scanner.Scanner) uint64 {
	var lines uint64
	for {
		s.SkipSpaces()
		switch {
		case !s.Valid():
			return lines
		case s.AtEOL(), s.Is(metisComment):
		default:
			lines++
		}
		s.SkipLine()
	}
}

// checkHeader verifies the declared sizes: the edge bound of a simple
// graph and the id width
func (v *Validator) checkHeader(h domain.Header, c *collector) error {
	if h.UndirectedEdges() > h.MaxUndirectedEdges() {
		d := domain.NewDiagnostic(domain.KindTooManyEdges, domain.NoNode, domain.NoNode, clampInt64(h.UndirectedEdges()),
			"with %d nodes there can be at most %d undirected edges, header declares %d",
			h.N, h.MaxUndirectedEdges(), h.UndirectedEdges())
		if err := c.add(d); err != nil {
			return err
		}
	}

	maxID := v.opts.Limits.MaxID()
	if h.N > maxID || h.M > maxID {
		d := domain.NewDiagnostic(domain.KindIDOverflow, domain.NoNode, domain.NoNode, clampInt64(max(h.N, h.M)),
			"n=%d and 2m=%d must not exceed %d for %d-bit ids", h.N, h.M, maxID, v.opts.Limits.IDBits)
		if err := c.add(d); err != nil {
			return err
		}
	}
	return nil
}

// checkRecord applies the per-edge checks. It reports false for edges
// that must not take part in the symmetry check.
func (v *Validator) checkRecord(h domain.Header, e domain.Edge, c *collector) (bool, error) {
	if e.From >= h.N {
		d := domain.NewDiagnostic(domain.KindNeighborOutOfRange, domain.NoNode, e.To, clampInt64(e.From+1),
			"source %d is higher than the number of nodes %d", e.From+1, h.N)
		return false, c.add(d)
	}
	if e.To >= h.N {
		d := domain.NewDiagnostic(domain.KindNeighborOutOfRange, e.From, domain.NoNode, clampInt64(e.To+1),
			"neighbor %d is higher than the number of nodes %d", e.To+1, h.N)
		return false, c.add(d)
	}

	if e.IsSelfLoop() {
		d := domain.NewDiagnostic(domain.KindSelfLoop, e.From, e.To, 0, "self-loop")
		if err := c.add(d); err != nil {
			return true, err
		}
	}

	switch {
	case e.Weight <= 0:
		d := domain.NewDiagnostic(domain.KindNegativeWeight, e.From, e.To, e.Weight,
			"edge weight must be positive, got %d", e.Weight)
		return true, c.add(d)
	case e.Weight > v.opts.Limits.MaxWeight():
		d := domain.NewDiagnostic(domain.KindWeightOverflow, e.From, e.To, e.Weight,
			"edge weight %d exceeds %d-bit weights", e.Weight, v.opts.Limits.WeightBits)
		return true, c.add(d)
	}
	return true, nil
}

func (v *Validator) checkNodeWeight(u domain.ID, weight domain.Weight, c *collector) error {
	switch {
	case weight < 0:
		return c.add(domain.NewDiagnostic(domain.KindNegativeWeight, u, domain.NoNode, weight,
			"node weight cannot be negative, got %d", weight))
	case weight > v.opts.Limits.MaxWeight():
		return c.add(domain.NewDiagnostic(domain.KindWeightOverflow, u, domain.NoNode, weight,
			"node weight %d exceeds %d-bit weights", weight, v.opts.Limits.WeightBits))
	}
	return nil
}

// checkCounts reconciles the declared sizes with the observed body
func (v *Validator) checkCounts(h domain.Header, nodes, edges uint64, c *collector) error {
	if nodes != h.N {
		d := domain.NewDiagnostic(domain.KindHeaderMismatch, domain.NoNode, domain.NoNode, clampInt64(nodes),
			"header declares %d nodes, found %d node lines", h.N, nodes)
		if err := c.add(d); err != nil {
			return err
		}
	}

	if edges != h.M {
		d := domain.NewDiagnostic(domain.KindHeaderMismatch, domain.NoNode, domain.NoNode, clampInt64(edges),
			"header declares %d directed edges, found %d", h.M, edges)
		if v.opts.AllowEdgeCountMismatch {
			d = d.AsWarning()
		}
		if err := c.add(d); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkTotal(t total, what string, c *collector) error {
	if !t.overflow {
		return nil
	}
	return c.add(domain.NewDiagnostic(domain.KindWeightOverflow, domain.NoNode, domain.NoNode, t.sum,
		"total %s weight exceeds %d-bit weights", what, v.opts.Limits.WeightBits))
}

func clampInt64(x uint64) int64 {
	return int64(min(x, uint64(1<<63-1)))
}
