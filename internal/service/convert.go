package service

import (
	"context"
	"fmt"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
)

// MetisToBinary converts a METIS graph into the binary adjacency format.
// The first pass sizes every adjacency list, the second writes targets.
func (s *Service) MetisToBinary(ctx context.Context, input, output string) (*Result, error) {
	output = outputPath(input, output, "bgf")
	return s.track(ctx, "metis2binary", input, output, func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		h, err := codec.ReadMetisHeaderFile(input)
		if err != nil {
			return domain.Header{}, err
		}

		w, err := codec.CreateBinary(output, h, opts)
		if err != nil {
			return h, err
		}

		var index uint64
		if err := w.WriteOffsets(index); err != nil {
			w.Abort()
			return h, err
		}
		_, err = codec.MetisDegrees(input, opts, func(u domain.ID, degree uint64) error {
			if err := cancelled(ctx, u); err != nil {
				return err
			}
			index += degree
			return w.WriteOffsets(index)
		})
		if err != nil {
			w.Abort()
			return h, err
		}

		var written uint64
		for e, err := range codec.MetisEdges(input, opts) {
			if err == nil {
				err = cancelled(ctx, written)
			}
			if err == nil {
				err = w.WriteTargets(e.To)
			}
			if err != nil {
				w.Abort()
				return h, err
			}
			written++
		}

		return h, w.Close()
	})
}

// MetisToXtrapulp writes the directed edges of a METIS graph as 0-based
// id pairs. idBits 0 selects the configured width.
func (s *Service) MetisToXtrapulp(ctx context.Context, input, output string, idBits uint) (*Result, error) {
	if idBits == 0 {
		idBits = s.cfg.Xtrapulp.IDBits
	}
	output = outputPath(input, output, "xtrapulp")
	return s.track(ctx, "metis2xtrapulp", input, output, func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		h, err := codec.ReadMetisHeaderFile(input)
		if err != nil {
			return domain.Header{}, err
		}

		w, err := codec.CreateXtrapulp(output, h, idBits, opts)
		if err != nil {
			return h, err
		}
		for e, err := range codec.MetisEdges(input, opts) {
			if err == nil {
				err = cancelled(ctx, w.Pairs())
			}
			if err == nil {
				err = w.WriteEdge(e)
			}
			if err != nil {
				w.Abort()
				return h, err
			}
		}
		return h, w.Close()
	})
}

// TrimMetis rewrites a METIS graph without node and edge weights
func (s *Service) TrimMetis(ctx context.Context, input, output string) (*Result, error) {
	output = outputPath(input, output, "graph.trimmed")
	return s.track(ctx, "trimmetis", input, output, func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		h, err := codec.ReadMetisHeaderFile(input)
		if err != nil {
			return domain.Header{}, err
		}
		trimmed := domain.Header{N: h.N, M: h.M}

		w, err := codec.CreateMetis(output, trimmed, opts)
		if err != nil {
			return trimmed, err
		}
		err = codec.DecodeMetis(input, codec.VisitorFuncs{
			OnNode: func(u domain.ID, _ domain.Weight) error {
				if err := cancelled(ctx, u); err != nil {
					return err
				}
				return w.WriteNode(u, 1)
			},
			OnEdge: func(e domain.Edge) error {
				return w.WriteEdge(domain.NewEdge(e.From, e.To))
			},
		}, opts)
		if err != nil {
			w.Abort()
			return trimmed, err
		}
		return trimmed, w.Close(h.N)
	})
}

// Convert picks the METIS conversion for input by its extension
func (s *Service) Convert(ctx context.Context, input, output string, opts ConvertOptions) (*Result, error) {
	desc, err := codec.ByExtension(input)
	if err != nil {
		return nil, err
	}
	switch desc.Name {
	case "edgelist":
		return s.EdgeListToMetis(ctx, input, output)
	case "obj":
		return s.OBJToMetis(ctx, input, output)
	case "stp":
		return s.STPToMetis(ctx, input, output, opts.EdgeWeights)
	case "gr":
		return s.GRToMetis(ctx, input, output, opts.EdgeWeights)
	case "psb":
		return s.PSBToMetis(ctx, input, output, opts.PeriodicBoundary)
	case "metis":
		return s.TrimMetis(ctx, input, output)
	default:
		return nil, fmt.Errorf("no METIS conversion for %s input: %w", desc.Name, domain.ErrUsage)
	}
}

// ConvertOptions holds the per-format switches of Convert
type ConvertOptions struct {
	EdgeWeights      bool
	PeriodicBoundary bool
}
