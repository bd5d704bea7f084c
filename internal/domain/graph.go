package domain

import "fmt"

// Header describes a graph as declared by its file.
// M is the directed edge count, twice the undirected count stored on disk.
type Header struct {
	N              uint64 `json:"n"`
	M              uint64 `json:"m"`
	HasNodeWeights bool   `json:"has_node_weights"`
	HasEdgeWeights bool   `json:"has_edge_weights"`
}

// NewHeader builds a header from a node count, an undirected edge count and a METIS format code
func NewHeader(n, undirected, format uint64) (Header, error) {
	if !ValidFormatCode(format) {
		return Header{}, fmt.Errorf("graph format %d is unsupported, should be 0, 1, 10 or 11", format)
	}
	return Header{
		N:              n,
		M:              2 * undirected,
		HasNodeWeights: format/10 == 1,
		HasEdgeWeights: format%10 == 1,
	}, nil
}

// ValidFormatCode reports whether format is one of the METIS codes 0, 1, 10, 11
func ValidFormatCode(format uint64) bool {
	return format == 0 || format == 1 || format == 10 || format == 11
}

// Format returns the METIS format code for the weight flags
func (h Header) Format() uint64 {
	var code uint64
	if h.HasNodeWeights {
		code += 10
	}
	if h.HasEdgeWeights {
		code++
	}
	return code
}

// UndirectedEdges returns the edge count as stored on disk
func (h Header) UndirectedEdges() uint64 {
	return h.M / 2
}

// MaxUndirectedEdges returns n(n-1)/2, the edge bound of a simple graph
func (h Header) MaxUndirectedEdges() uint64 {
	if h.N < 2 {
		return 0
	}
	if h.N%2 == 0 {
		return (h.N / 2) * (h.N - 1)
	}
	return h.N * ((h.N - 1) / 2)
}

func (h Header) String() string {
	return fmt.Sprintf("n=%d m=%d format=%d", h.N, h.UndirectedEdges(), h.Format())
}
