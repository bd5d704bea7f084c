package validate

import (
	"cmp"
	"context"
	"slices"

	"graphtools/internal/domain"
)

// checkSymmetry sorts edges by (from, to) and verifies that every
// undirected edge is stored once per direction with equal weight.
// Reverse edges are found by binary search inside the target's
// adjacency range, so the pass costs O(m log d).
func (v *Validator) checkSymmetry(ctx context.Context, n uint64, edges []domain.Edge, c *collector) error {
	slices.SortFunc(edges, domain.CompareEdges)

	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		if !domain.SameEndpoints(prev, cur) {
			continue
		}
		d := domain.NewDiagnostic(domain.KindDuplicateEdge, cur.From, cur.To, cur.Weight,
			"duplicate edge with weights %d and %d", prev.Weight, cur.Weight)
		if err := c.add(d); err != nil {
			return err
		}
	}

	nodes := prefixIndex(n, edges)
	for i, e := range edges {
		if i%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rev, found := findEdge(edges, nodes, e.To, e.From)
		var d domain.Diagnostic
		switch {
		case found && rev.Weight != e.Weight:
			if e.From > e.To {
				// reported from the other direction
				continue
			}
			d = domain.NewDiagnostic(domain.KindAsymmetricWeight, e.From, e.To, e.Weight,
				"edge has weight %d but the reverse edge has weight %d", e.Weight, rev.Weight)
		case found:
			continue
		case e.From <= e.To:
			d = domain.NewDiagnostic(domain.KindMissingReverseEdge, e.From, e.To, e.Weight, "missing reverse edge")
		default:
			d = domain.NewDiagnostic(domain.KindMissingForwardEdge, e.To, e.From, e.Weight,
				"only the reverse edge is present")
		}
		if err := c.add(d); err != nil {
			return err
		}
	}
	return nil
}

// prefixIndex returns nodes such that the outgoing edges of u occupy
// edges[nodes[u]:nodes[u+1]]. Edges must be sorted by source. The index
// only spans sources that occur, so a declared n far above the body
// does not allocate.
func prefixIndex(n uint64, edges []domain.Edge) []uint64 {
	if len(edges) == 0 {
		return []uint64{0}
	}
	span := min(n, edges[len(edges)-1].From+1)
	nodes := make([]uint64, span+1)

	j := uint64(0)
	for u := uint64(0); u < span; u++ {
		for j < uint64(len(edges)) && edges[j].From == u {
			j++
		}
		nodes[u+1] = j
	}
	return nodes
}

// findEdge binary-searches the adjacency range of from for to
func findEdge(edges []domain.Edge, nodes []uint64, from, to domain.ID) (domain.Edge, bool) {
	if from+1 >= uint64(len(nodes)) {
		return domain.Edge{}, false
	}
	adjacency := edges[nodes[from]:nodes[from+1]]
	i, found := slices.BinarySearchFunc(adjacency, to, func(e domain.Edge, target domain.ID) int {
		return cmp.Compare(e.To, target)
	})
	if !found {
		return domain.Edge{}, false
	}
	return adjacency[i], true
}
