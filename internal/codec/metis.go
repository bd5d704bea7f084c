package codec

import (
	"errors"
	"iter"
	"math"

	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

const metisComment = '%'

// errStopIteration ends a decode pass when a sequence consumer breaks early
var errStopIteration = errors.New("iteration stopped")

// MetisDecoder decodes METIS adjacency files
type MetisDecoder struct{}

func (MetisDecoder) Format() string { return "metis" }

func (MetisDecoder) Decode(path string, v Visitor, opts Options) error {
	return DecodeMetis(path, v, opts)
}

// ReadMetisHeader parses the first non-comment line `n m [format]`.
// The returned header carries the directed edge count.
func ReadMetisHeader(s *scanner.Scanner) (domain.Header, error) {
	s.SkipComments(metisComment)

	n, err := s.ScanUint(64)
	if err != nil {
		return domain.Header{}, malformedHeader(err)
	}
	m, err := s.ScanUint(64)
	if err != nil {
		return domain.Header{}, malformedHeader(err)
	}
	var format uint64
	if s.AtDigit() {
		if format, err = s.ScanUint(64); err != nil {
			return domain.Header{}, malformedHeader(err)
		}
	}
	if err := s.EndLine(); err != nil {
		return domain.Header{}, malformedHeader(err)
	}

	if m > math.MaxUint64/2 {
		return domain.Header{}, s.Errorf(domain.ErrMalformedHeader, "edge count %d cannot be doubled", m)
	}
	h, err := domain.NewHeader(n, m, format)
	if err != nil {
		return domain.Header{}, s.Errorf(domain.ErrMalformedHeader, "%v", err)
	}
	return h, nil
}

// ReadMetisHeaderFile reads only the header of a METIS file
func ReadMetisHeaderFile(path string) (domain.Header, error) {
	var h domain.Header
	err := decodeFile(path, "metis", func(s *scanner.Scanner) error {
		var err error
		h, err = ReadMetisHeader(s)
		return err
	})
	return h, err
}

// DecodeMetis streams every node and edge of a METIS file into v
func DecodeMetis(path string, v Visitor, opts Options) error {
	return decodeFile(path, "metis", func(s *scanner.Scanner) error {
		h, err := ReadMetisHeader(s)
		if err != nil {
			return err
		}
		if err := v.Header(h); err != nil {
			return err
		}

		ticker := opts.ticker()
		total := uint64(s.Len())

		for u := domain.ID(0); u < h.N; u++ {
			if err := beginNodeLine(s, u, h.N); err != nil {
				return err
			}

			weight := domain.Weight(1)
			if h.HasNodeWeights {
				if weight, err = s.ScanInt(64); err != nil {
					return err
				}
			}
			if err := v.Node(u, weight); err != nil {
				return err
			}

			for s.AtDigit() {
				to, err := scanNodeID(s)
				if err != nil {
					return err
				}
				e := domain.NewEdge(u, to)
				if h.HasEdgeWeights {
					if e.Weight, err = s.ScanInt(64); err != nil {
						return err
					}
				}
				if err := v.Edge(e); err != nil {
					return err
				}
				ticker.Tick(uint64(s.Pos()), total)
			}

			if err := s.EndLine(); err != nil {
				return err
			}
		}

		if err := expectEnd(s, metisComment); err != nil {
			return err
		}
		ticker.Done(total)
		return nil
	})
}

// MetisDegrees reports the out-degree of every node without parsing
// neighbor values. It is the sizing pass of two-pass conversions.
func MetisDegrees(path string, opts Options, fn func(u domain.ID, degree uint64) error) (domain.Header, error) {
	var h domain.Header
	err := decodeFile(path, "metis", func(s *scanner.Scanner) error {
		var err error
		if h, err = ReadMetisHeader(s); err != nil {
			return err
		}

		ticker := opts.ticker()
		total := uint64(s.Len())

		for u := domain.ID(0); u < h.N; u++ {
			if err := beginNodeLine(s, u, h.N); err != nil {
				return err
			}
			if h.HasNodeWeights {
				if err := skipInt(s); err != nil {
					return err
				}
			}

			var degree uint64
			for s.AtDigit() {
				if err := s.SkipUint(); err != nil {
					return err
				}
				if h.HasEdgeWeights {
					if err := skipInt(s); err != nil {
						return err
					}
				}
				degree++
			}
			if err := s.EndLine(); err != nil {
				return err
			}
			if err := fn(u, degree); err != nil {
				return err
			}
			ticker.Tick(uint64(s.Pos()), total)
		}

		if err := expectEnd(s, metisComment); err != nil {
			return err
		}
		ticker.Done(total)
		return nil
	})
	return h, err
}

// MetisEdges returns the edges of a METIS file as a lazy sequence. Every
// iteration decodes the file from the start; breaking out of the loop
// releases the mapping. A decode failure is yielded once as the final pair.
func MetisEdges(path string, opts Options) iter.Seq2[domain.Edge, error] {
	return func(yield func(domain.Edge, error) bool) {
		err := DecodeMetis(path, VisitorFuncs{
			OnEdge: func(e domain.Edge) error {
				if !yield(e, nil) {
					return errStopIteration
				}
				return nil
			},
		}, opts)
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(domain.Edge{}, err)
		}
	}
}

// beginNodeLine skips comments in front of node u's line and fails if the
// input ends before all n lines were read
func beginNodeLine(s *scanner.Scanner, u, n domain.ID) error {
	s.SkipComments(metisComment)
	if !s.Valid() {
		return s.Errorf(domain.ErrEndOfInput, "expected %d node lines, found %d", n, u)
	}
	return nil
}

func skipInt(s *scanner.Scanner) error {
	if s.Is('-') {
		if err := s.Advance(); err != nil {
			return err
		}
	}
	return s.SkipUint()
}
