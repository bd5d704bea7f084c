package service

import (
	"context"
	"slices"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
)

// OBJToMetis converts a mesh into its vertex adjacency graph
func (s *Service) OBJToMetis(ctx context.Context, input, output string) (*Result, error) {
	return s.collectToMetis(ctx, "obj2metis", "obj", input, output, collectOptions{})
}

// STPToMetis converts the graph section of a Steiner problem file.
// edgeWeights keeps the declared edge weights.
func (s *Service) STPToMetis(ctx context.Context, input, output string, edgeWeights bool) (*Result, error) {
	return s.collectToMetis(ctx, "stp2metis", "stp", input, output, collectOptions{edgeWeights: edgeWeights})
}

// GRToMetis converts shortest-path arcs into an undirected graph. Every
// arc is symmetrized; parallel arcs collapse to the lightest one.
func (s *Service) GRToMetis(ctx context.Context, input, output string, edgeWeights bool) (*Result, error) {
	return s.collectToMetis(ctx, "gr2metis", "gr", input, output, collectOptions{edgeWeights: edgeWeights, symmetrize: true})
}

type collectOptions struct {
	edgeWeights bool
	symmetrize  bool
}

// collectToMetis decodes the whole edge set of a format without adjacency
// order, normalizes it and writes it as METIS
func (s *Service) collectToMetis(ctx context.Context, tool, format, input, output string, co collectOptions) (*Result, error) {
	desc, err := codec.Lookup(format)
	if err != nil {
		return nil, err
	}
	output = outputPath(input, output, "graph")

	return s.track(ctx, tool, input, output, func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		var declared domain.Header
		var edges []domain.Edge
		err := desc.Decoder.Decode(input, codec.VisitorFuncs{
			OnHeader: func(h domain.Header) error {
				declared = h
				return nil
			},
			OnEdge: func(e domain.Edge) error {
				if err := cancelled(ctx, uint64(len(edges))); err != nil {
					return err
				}
				edges = append(edges, e)
				return nil
			},
		}, opts)
		if err != nil {
			return domain.Header{}, err
		}

		if co.symmetrize {
			edges = domain.Symmetrize(edges)
		}
		edges = normalizeEdges(edges)

		h := domain.Header{N: declared.N, M: uint64(len(edges)), HasEdgeWeights: co.edgeWeights}
		w, err := codec.CreateMetis(output, h, opts)
		if err != nil {
			return h, err
		}
		if err := w.WritePart(edges, 0, h.N); err != nil {
			w.Abort()
			return h, err
		}
		return h, w.Close(h.N)
	})
}

// normalizeEdges sorts edges, keeps the lightest of parallel edges and
// drops self-loops
func normalizeEdges(edges []domain.Edge) []domain.Edge {
	slices.SortFunc(edges, domain.CompareEdges)
	edges = slices.CompactFunc(edges, domain.SameEndpoints)
	return slices.DeleteFunc(edges, domain.Edge.IsSelfLoop)
}
