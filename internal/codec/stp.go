package codec

import (
	"math"

	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

// STPDecoder decodes the graph section of SteinLib files
type STPDecoder struct{}

func (STPDecoder) Format() string { return "stp" }

func (STPDecoder) Decode(path string, v Visitor, opts Options) error {
	return DecodeSTP(path, v, opts)
}

// DecodeSTP finds `Section Graph`, reads the `Nodes k` and `Edges k`
// declarations, then streams `E u v [w]` lines in both directions until
// `End`. Markers are matched case-insensitively.
func DecodeSTP(path string, v Visitor, opts Options) error {
	return decodeFile(path, "stp", func(s *scanner.Scanner) error {
		for {
			s.SkipSpaces()
			if !s.Valid() {
				return s.Errorf(domain.ErrMalformedHeader, "missing \"Section Graph\"")
			}
			found := s.HasLiteralFold("Section Graph")
			s.SkipLine()
			if found {
				break
			}
		}

		n, err := readSTPCount(s, "Nodes")
		if err != nil {
			return err
		}
		m, err := readSTPCount(s, "Edges")
		if err != nil {
			return err
		}
		if m > math.MaxUint64/2 {
			return s.Errorf(domain.ErrMalformedHeader, "edge count %d cannot be doubled", m)
		}
		if err := v.Header(domain.Header{N: n, M: 2 * m, HasEdgeWeights: true}); err != nil {
			return err
		}

		ticker := opts.ticker()
		total := uint64(s.Len())

		for {
			s.SkipSpaces()
			switch {
			case !s.Valid():
				return s.Errorf(domain.ErrEndOfInput, "graph section is not terminated by \"End\"")
			case s.AtEOL():
				s.SkipLine()
				continue
			case s.HasLiteralFold("End"):
				s.SkipLine()
				ticker.Done(total)
				return nil
			}

			if err := s.ConsumeLiteralFold("E"); err != nil {
				return err
			}
			s.SkipSpaces()
			from, err := scanNodeID(s)
			if err != nil {
				return err
			}
			to, err := scanNodeID(s)
			if err != nil {
				return err
			}
			e := domain.NewEdge(from, to)
			if s.AtDigit() {
				if e.Weight, err = s.ScanInt(64); err != nil {
					return err
				}
			}
			if err := s.EndLine(); err != nil {
				return err
			}

			if err := v.Edge(e); err != nil {
				return err
			}
			if err := v.Edge(e.Reverse()); err != nil {
				return err
			}
			ticker.Tick(uint64(s.Pos()), total)
		}
	})
}

func readSTPCount(s *scanner.Scanner, key string) (uint64, error) {
	s.SkipBlankLines()
	s.SkipSpaces()
	if err := s.ConsumeLiteralFold(key); err != nil {
		return 0, malformedHeader(err)
	}
	s.SkipSpaces()
	count, err := s.ScanUint(64)
	if err != nil {
		return 0, malformedHeader(err)
	}
	if err := s.EndLine(); err != nil {
		return 0, malformedHeader(err)
	}
	return count, nil
}
