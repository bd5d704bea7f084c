package service

import (
	"context"
	"fmt"
	"math"
	"slices"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
)

// PSBToMetis converts an RGB image into its 4-neighbour pixel grid. Edge
// weights are the euclidean colour distance, at least 1. With periodic
// the grid wraps around at every border.
func (s *Service) PSBToMetis(ctx context.Context, input, output string, periodic bool) (*Result, error) {
	output = outputPath(input, output, "graph")
	return s.track(ctx, "psb2metis", input, output, func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		img, err := codec.DecodePSB(input)
		if err != nil {
			return domain.Header{}, err
		}
		g := grid{img: img, periodic: periodic}
		if periodic && (img.Width < 3 || img.Height < 3) {
			return domain.Header{}, fmt.Errorf("periodic grid needs at least 3x3 pixels, image is %dx%d: %w",
				img.Width, img.Height, domain.ErrUsage)
		}

		h := domain.Header{N: img.Pixels(), M: 2 * g.undirectedEdges(), HasEdgeWeights: true}
		w, err := codec.CreateMetis(output, h, opts)
		if err != nil {
			return h, err
		}

		row := make([]domain.Edge, 0, 4*img.Width)
		for y := range img.Height {
			if err := ctx.Err(); err != nil {
				w.Abort()
				return h, err
			}
			row = row[:0]
			for x := range img.Width {
				row = g.appendNeighbors(row, y, x)
			}
			if err := w.WritePart(row, y*img.Width, (y+1)*img.Width); err != nil {
				w.Abort()
				return h, err
			}
		}
		return h, w.Close(h.N)
	})
}

type grid struct {
	img      *codec.RGBImage
	periodic bool
}

func (g grid) undirectedEdges() uint64 {
	w, h := g.img.Width, g.img.Height
	switch {
	case w == 0 || h == 0:
		return 0
	case g.periodic:
		return 2 * w * h
	default:
		return 2*w*h - w - h
	}
}

// appendNeighbors appends the edges of pixel (y, x) sorted by target
func (g grid) appendNeighbors(edges []domain.Edge, y, x uint64) []domain.Edge {
	w, h := g.img.Width, g.img.Height
	u := y*w + x
	start := len(edges)

	add := func(ty, tx uint64) {
		v := ty*w + tx
		weight := domain.Weight(math.Floor(g.img.DistanceL2(u, v)))
		edges = append(edges, domain.Edge{From: u, To: v, Weight: max(weight, 1)})
	}

	switch {
	case y > 0:
		add(y-1, x)
	case g.periodic:
		add(h-1, x)
	}
	switch {
	case x > 0:
		add(y, x-1)
	case g.periodic:
		add(y, w-1)
	}
	switch {
	case x+1 < w:
		add(y, x+1)
	case g.periodic:
		add(y, 0)
	}
	switch {
	case y+1 < h:
		add(y+1, x)
	case g.periodic:
		add(0, x)
	}

	slices.SortFunc(edges[start:], domain.CompareEdges)
	return edges
}
