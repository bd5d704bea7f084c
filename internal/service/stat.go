package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
	"graphtools/internal/fsutil"
)

// Stats summarizes one graph file
type Stats struct {
	Graph string
	// Size is the file size in bytes
	Size int64
	N    uint64
	// M is the undirected edge count
	M uint64

	// Degree statistics are left zero in fast mode
	Fast         bool
	MinDegree    uint64
	MaxDegree    uint64
	MeanDegree   float64
	StdDevDegree float64
	MedianDegree float64
	Isolated     uint64
}

// Stat reads the header of a METIS or binary graph and, unless fast, its
// degree distribution
func (s *Service) Stat(ctx context.Context, path string, fast bool) (*Stats, error) {
	stats := &Stats{Graph: path, Fast: fast}
	_, err := s.track(ctx, "statmetis", path, "", func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		size, err := fsutil.Size(path)
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Header{}, fmt.Errorf("stat %s: %w", path, domain.ErrInputNotFound)
		}
		if err != nil {
			return domain.Header{}, fmt.Errorf("%w: %v", domain.ErrIO, err)
		}
		stats.Size = size

		var h domain.Header
		var degrees []float64
		if strings.EqualFold(filepath.Ext(path), ".bgf") {
			h, degrees, err = binaryDegrees(path, fast)
		} else {
			h, degrees, err = metisDegrees(ctx, path, fast, opts)
		}
		if err != nil {
			return h, err
		}

		stats.N, stats.M = h.N, h.UndirectedEdges()
		if !fast {
			stats.setDegrees(degrees)
		}
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func binaryDegrees(path string, fast bool) (domain.Header, []float64, error) {
	if fast {
		bh, err := codec.ReadBinaryHeaderFile(path)
		return domain.Header{N: bh.N, M: bh.M}, nil, err
	}
	g, err := codec.ReadBinaryGraph(path)
	if err != nil {
		return domain.Header{}, nil, err
	}
	degrees := make([]float64, g.Header.N)
	for u := range g.Header.N {
		degrees[u] = float64(g.Degree(u))
	}
	return domain.Header{N: g.Header.N, M: g.Header.M}, degrees, nil
}

func metisDegrees(ctx context.Context, path string, fast bool, opts codec.Options) (domain.Header, []float64, error) {
	if fast {
		h, err := codec.ReadMetisHeaderFile(path)
		return h, nil, err
	}
	var degrees []float64
	h, err := codec.MetisDegrees(path, opts, func(u domain.ID, degree uint64) error {
		if err := cancelled(ctx, u); err != nil {
			return err
		}
		degrees = append(degrees, float64(degree))
		return nil
	})
	return h, degrees, err
}

func (st *Stats) setDegrees(degrees []float64) {
	if len(degrees) == 0 {
		return
	}
	slices.Sort(degrees)
	st.MinDegree = uint64(degrees[0])
	st.MaxDegree = uint64(degrees[len(degrees)-1])
	st.MeanDegree, st.StdDevDegree = stat.MeanStdDev(degrees, nil)
	if len(degrees) == 1 {
		st.StdDevDegree = 0
	}
	st.MedianDegree = stat.Quantile(0.5, stat.Empirical, degrees, nil)
	for _, d := range degrees {
		if d > 0 {
			break
		}
		st.Isolated++
	}
}

// CSVHeader returns the column names matching CSVRow
func CSVHeader(fast bool) string {
	cols := []string{"Graph", "N", "M"}
	if !fast {
		cols = append(cols, "MinDegree", "MaxDegree", "MeanDegree", "StdDevDegree", "MedianDegree", "Isolated", "Bytes")
	}
	return strings.Join(cols, ",")
}

// CSVRow renders st as one CSV line
func (st *Stats) CSVRow() string {
	cols := []string{st.Graph, strconv.FormatUint(st.N, 10), strconv.FormatUint(st.M, 10)}
	if !st.Fast {
		cols = append(cols,
			strconv.FormatUint(st.MinDegree, 10),
			strconv.FormatUint(st.MaxDegree, 10),
			strconv.FormatFloat(st.MeanDegree, 'f', 3, 64),
			strconv.FormatFloat(st.StdDevDegree, 'f', 3, 64),
			strconv.FormatFloat(st.MedianDegree, 'f', 1, 64),
			strconv.FormatUint(st.Isolated, 10),
			strconv.FormatInt(st.Size, 10),
		)
	}
	return strings.Join(cols, ",")
}

// Summary renders st for humans
func (st *Stats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Graph: %s (%s)\n", st.Graph, humanize.IBytes(uint64(st.Size)))
	fmt.Fprintf(&b, "Number of nodes: %s\n", humanize.Comma(int64(st.N)))
	fmt.Fprintf(&b, "Number of edges: %s\n", humanize.Comma(int64(st.M)))
	if st.Fast {
		return b.String()
	}
	fmt.Fprintf(&b, "Degree: min %d, max %d, mean %.3f, stddev %.3f, median %.1f\n",
		st.MinDegree, st.MaxDegree, st.MeanDegree, st.StdDevDegree, st.MedianDegree)
	fmt.Fprintf(&b, "Isolated nodes: %s\n", humanize.Comma(int64(st.Isolated)))
	return b.String()
}
