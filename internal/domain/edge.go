package domain

import "cmp"

// Edge is a directed edge record; undirected graphs carry both directions
type Edge struct {
	From   ID
	To     ID
	Weight Weight
}

// NewEdge creates an edge with unit weight
func NewEdge(from, to ID) Edge {
	return Edge{From: from, To: to, Weight: 1}
}

// Reverse returns the edge pointing the other way with the same weight
func (e Edge) Reverse() Edge {
	return Edge{From: e.To, To: e.From, Weight: e.Weight}
}

// IsSelfLoop reports whether both endpoints are the same node
func (e Edge) IsSelfLoop() bool {
	return e.From == e.To
}

// CompareEdges orders edges by source, then target, then weight
func CompareEdges(a, b Edge) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := cmp.Compare(a.To, b.To); c != 0 {
		return c
	}
	return cmp.Compare(a.Weight, b.Weight)
}

// SameEndpoints reports whether two edges connect the same ordered pair
func SameEndpoints(a, b Edge) bool {
	return a.From == b.From && a.To == b.To
}

// Symmetrize appends the reverse of every edge
func Symmetrize(edges []Edge) []Edge {
	out := make([]Edge, 0, 2*len(edges))
	for _, e := range edges {
		out = append(out, e, e.Reverse())
	}
	return out
}
