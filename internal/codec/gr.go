package codec

import (
	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

const grComment = 'c'

// GRDecoder decodes shortest-path arc files: a `p sp n m` problem line and
// `a u v w` arcs. Arcs are directed; callers symmetrize as needed.
type GRDecoder struct{}

func (GRDecoder) Format() string { return "gr" }

func (GRDecoder) Decode(path string, v Visitor, opts Options) error {
	return DecodeGR(path, v, opts)
}

// DecodeGR streams the header and every arc of a GR file into v
func DecodeGR(path string, v Visitor, opts Options) error {
	return decodeFile(path, "gr", func(s *scanner.Scanner) error {
		ticker := opts.ticker()
		total := uint64(s.Len())
		seenHeader := false

		for {
			s.SkipSpaces()
			if !s.Valid() {
				break
			}
			c, _ := s.Peek()
			switch {
			case s.AtEOL(), c == grComment:
				s.SkipLine()

			case c == 'p':
				if seenHeader {
					return s.Errorf(domain.ErrMalformedHeader, "second problem line")
				}
				h, err := readGRHeader(s)
				if err != nil {
					return err
				}
				seenHeader = true
				if err := v.Header(h); err != nil {
					return err
				}

			case c == 'a':
				if !seenHeader {
					return s.Errorf(domain.ErrMalformedHeader, "arc before problem line")
				}
				e, err := readGRArc(s)
				if err != nil {
					return err
				}
				if err := v.Edge(e); err != nil {
					return err
				}
				ticker.Tick(uint64(s.Pos()), total)

			default:
				return s.Errorf(domain.ErrUnexpectedToken, "expected 'p', 'a' or 'c' line, found %q", c)
			}
		}

		if !seenHeader {
			return s.Errorf(domain.ErrMalformedHeader, "missing problem line")
		}
		ticker.Done(total)
		return nil
	})
}

func readGRHeader(s *scanner.Scanner) (domain.Header, error) {
	if err := s.ConsumeLiteral("p"); err != nil {
		return domain.Header{}, malformedHeader(err)
	}
	s.SkipSpaces()
	if !s.AtDigit() {
		s.SkipToken()
	}
	n, err := s.ScanUint(64)
	if err != nil {
		return domain.Header{}, malformedHeader(err)
	}
	m, err := s.ScanUint(64)
	if err != nil {
		return domain.Header{}, malformedHeader(err)
	}
	if err := s.EndLine(); err != nil {
		return domain.Header{}, malformedHeader(err)
	}
	return domain.Header{N: n, M: m, HasEdgeWeights: true}, nil
}

func readGRArc(s *scanner.Scanner) (domain.Edge, error) {
	if err := s.ConsumeLiteral("a"); err != nil {
		return domain.Edge{}, err
	}
	s.SkipSpaces()
	from, err := scanNodeID(s)
	if err != nil {
		return domain.Edge{}, err
	}
	to, err := scanNodeID(s)
	if err != nil {
		return domain.Edge{}, err
	}
	e := domain.NewEdge(from, to)
	if e.Weight, err = s.ScanInt(64); err != nil {
		return domain.Edge{}, err
	}
	return e, s.EndLine()
}
