package validate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
)

// PartitionReport summarizes a k-way partition of a graph
type PartitionReport struct {
	Graph domain.Header
	// Blocks is k, one more than the largest block id among the first n entries
	Blocks     uint64
	BlockSizes []uint64
	// Cut counts undirected edges whose endpoints lie in different blocks
	Cut         uint64
	Imbalance   float64
	Diagnostics []domain.Diagnostic
}

// ClusteringReport summarizes a clustering of a graph
type ClusteringReport struct {
	Graph domain.Header
	// Cut is the total weight of undirected edges between clusters
	Cut              domain.Weight
	Clusters         uint64
	MaxClusterWeight domain.Weight
	TotalNodeWeight  domain.Weight
	Diagnostics      []domain.Diagnostic
}

// CheckPartition computes the cut and imbalance of the partition stored
// at partitionPath. An assignment with fewer entries than the graph has
// nodes fails; a longer one is reported as a warning. Block ids must be
// below n.
func (v *Validator) CheckPartition(ctx context.Context, graphPath, partitionPath string) (*PartitionReport, error) {
	assignment, err := codec.DecodeAssignment(partitionPath, codec.Options{})
	if err != nil {
		return nil, err
	}
	h, err := codec.ReadMetisHeaderFile(graphPath)
	if err != nil {
		return nil, err
	}

	report := &PartitionReport{Graph: h}
	c := v.newCollector(&report.Diagnostics)

	if err := v.checkAssignmentSize(h, assignment, "partition", c); err != nil {
		return report, err
	}
	if err := checkAssignmentIDs(h, assignment, "block", c); err != nil {
		return report, err
	}
	report.Blocks = assignment[:h.N].Blocks()

	if report.Blocks == 0 || h.N == 0 {
		report.Imbalance = 1
		return report, nil
	}

	report.BlockSizes = make([]uint64, report.Blocks)
	for _, block := range assignment[:h.N] {
		report.BlockSizes[block]++
	}
	var largest uint64
	for _, size := range report.BlockSizes {
		largest = max(largest, size)
	}
	report.Imbalance = float64(largest) / (float64(h.N) / float64(report.Blocks))

	var directedCut uint64
	err = v.decodeAssigned(ctx, graphPath, h, c, codec.VisitorFuncs{
		OnEdge: func(e domain.Edge) error {
			if assignment[e.From] != assignment[e.To] {
				directedCut++
			}
			return nil
		},
	})
	if err != nil {
		return report, err
	}
	report.Cut = directedCut / 2

	v.logger.WithFields(logrus.Fields{
		"action": "check_partition",
		"input":  partitionPath,
		"blocks": report.Blocks,
	}).Debug("partition checked")
	return report, nil
}

// CheckClustering computes the weighted cut and cluster statistics of
// the clustering stored at clusteringPath. Cluster ids must be below n.
func (v *Validator) CheckClustering(ctx context.Context, graphPath, clusteringPath string) (*ClusteringReport, error) {
	clustering, err := codec.DecodeAssignment(clusteringPath, codec.Options{})
	if err != nil {
		return nil, err
	}
	h, err := codec.ReadMetisHeaderFile(graphPath)
	if err != nil {
		return nil, err
	}

	report := &ClusteringReport{Graph: h}
	c := v.newCollector(&report.Diagnostics)

	if err := v.checkAssignmentSize(h, clustering, "clustering", c); err != nil {
		return report, err
	}
	if err := checkAssignmentIDs(h, clustering, "cluster", c); err != nil {
		return report, err
	}

	limit := v.opts.Limits.MaxWeight()
	weights := make([]total, h.N)
	var nodeTotal, directedCut total
	err = v.decodeAssigned(ctx, graphPath, h, c, codec.VisitorFuncs{
		OnNode: func(u domain.ID, weight domain.Weight) error {
			weights[clustering[u]].add(weight, limit)
			nodeTotal.add(weight, limit)
			return nil
		},
		OnEdge: func(e domain.Edge) error {
			if clustering[e.From] != clustering[e.To] {
				directedCut.add(e.Weight, limit)
			}
			return nil
		},
	})
	if err != nil {
		return report, err
	}

	for _, t := range []struct {
		sum  total
		what string
	}{{nodeTotal, "node"}, {directedCut, "cut"}} {
		if t.sum.overflow {
			d := domain.NewDiagnostic(domain.KindWeightOverflow, domain.NoNode, domain.NoNode, t.sum.sum,
				"total %s weight exceeds %d-bit weights", t.what, v.opts.Limits.WeightBits)
			return report, fatal(c, d)
		}
	}
	report.TotalNodeWeight = nodeTotal.sum
	report.Cut = directedCut.sum / 2

	for _, weight := range weights {
		if weight.sum > 0 {
			report.Clusters++
		}
		report.MaxClusterWeight = max(report.MaxClusterWeight, weight.sum)
	}
	return report, nil
}

// checkAssignmentIDs rejects block or cluster ids that cannot belong to an
// n-node graph. Only the first n entries are inspected.
func checkAssignmentIDs(h domain.Header, a domain.Assignment, what string, c *collector) error {
	for u, id := range a[:h.N] {
		if id >= h.N {
			d := domain.NewDiagnostic(domain.KindAssignmentOutOfBounds, domain.ID(u), domain.NoNode, clampInt64(id),
				"node is in %s %d, which is out of bounds for %d nodes", what, id, h.N)
			return fatal(c, d)
		}
	}
	return nil
}

// checkAssignmentSize rejects assignments that do not cover every node
func (v *Validator) checkAssignmentSize(h domain.Header, a domain.Assignment, what string, c *collector) error {
	entries := uint64(len(a))
	switch {
	case entries < h.N:
		d := domain.NewDiagnostic(domain.KindAssignmentOutOfBounds, domain.ID(entries), domain.NoNode, clampInt64(entries),
			"graph has %d nodes, but the %s has only %d entries", h.N, what, entries)
		return fatal(c, d)
	case entries > h.N:
		d := domain.NewDiagnostic(domain.KindAssignmentSizeMismatch, domain.NoNode, domain.NoNode, clampInt64(entries),
			"graph has %d nodes, but the %s has %d entries", h.N, what, entries)
		return c.add(d.AsWarning())
	}
	return nil
}

// decodeAssigned streams the graph into visitor after checking that every
// neighbor can be looked up in an assignment of h.N entries
func (v *Validator) decodeAssigned(ctx context.Context, path string, h domain.Header, c *collector, visitor codec.VisitorFuncs) error {
	onNode := visitor.OnNode
	visitor.OnNode = func(u domain.ID, weight domain.Weight) error {
		if u%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if onNode == nil {
			return nil
		}
		return onNode(u, weight)
	}

	onEdge := visitor.OnEdge
	visitor.OnEdge = func(e domain.Edge) error {
		if e.To >= h.N {
			d := domain.NewDiagnostic(domain.KindNeighborOutOfRange, e.From, domain.NoNode, clampInt64(e.To+1),
				"neighbor %d is higher than the number of nodes %d", e.To+1, h.N)
			return fatal(c, d)
		}
		return onEdge(e)
	}

	if err := codec.DecodeMetis(path, visitor, codec.Options{Progress: v.opts.Progress}); err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	return nil
}

// fatal records d and returns it as an error regardless of the mode
func fatal(c *collector, d domain.Diagnostic) error {
	if err := c.add(d); err != nil {
		return err
	}
	return &domain.ValidationError{Diagnostics: []domain.Diagnostic{d}}
}
