package codec

import (
	"fmt"

	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

const objComment = '#'

// OBJDecoder turns a Wavefront OBJ mesh into a graph: every `v` line is a
// node and every face contributes the edges of its boundary cycle.
type OBJDecoder struct{}

func (OBJDecoder) Format() string { return "obj" }

func (OBJDecoder) Decode(path string, v Visitor, opts Options) error {
	return DecodeOBJ(path, v, opts)
}

// DecodeOBJ streams nodes and both directions of every face edge into v.
// Shared edges of adjacent faces are emitted once per face; degenerate
// self edges are dropped. Faces may only reference vertices declared
// above them. The header follows the body.
func DecodeOBJ(path string, v Visitor, opts Options) error {
	return decodeFile(path, "obj", func(s *scanner.Scanner) error {
		ticker := opts.ticker()
		total := uint64(s.Len())

		var n, m uint64
		face := make([]domain.ID, 0, 8)

		for {
			s.SkipSpaces()
			if !s.Valid() {
				break
			}

			switch {
			case s.AtEOL(), s.Is(objComment):
				s.SkipLine()

			case s.HasLiteral("v ") || s.HasLiteral("v\t"):
				if err := v.Node(n, 1); err != nil {
					return err
				}
				n++
				s.SkipLine()

			case s.HasLiteral("f ") || s.HasLiteral("f\t"):
				var err error
				if face, err = readFace(s, face[:0], n); err != nil {
					return err
				}
				for i, a := range face {
					b := face[(i+1)%len(face)]
					if a == b {
						continue
					}
					e := domain.NewEdge(a, b)
					if err := v.Edge(e); err != nil {
						return err
					}
					if err := v.Edge(e.Reverse()); err != nil {
						return err
					}
					m += 2
				}
				ticker.Tick(uint64(s.Pos()), total)

			default:
				// vt, vn, vp, groups, materials, lines
				s.SkipLine()
			}
		}

		ticker.Done(total)
		return v.Header(domain.Header{N: n, M: m})
	})
}

// readFace parses `f r1 r2 r3 ...` where each reference is `i`, `i/t`,
// `i//n` or `i/t/n`. Negative indices count back from the last vertex seen.
func readFace(s *scanner.Scanner, face []domain.ID, vertices uint64) ([]domain.ID, error) {
	if err := s.Advance(); err != nil {
		return nil, err
	}
	for {
		for s.Is('\t') || s.Is(' ') {
			_ = s.Advance()
		}
		if s.AtEOL() {
			break
		}

		id, err := readVertexRef(s, vertices)
		if err != nil {
			return nil, err
		}
		face = append(face, id)

		for i := 0; i < 2 && s.Is('/'); i++ {
			_ = s.Advance()
			if s.AtDigit() {
				if err := s.SkipUint(); err != nil {
					return nil, err
				}
			}
		}
		if !s.AtEOL() && !s.AtDigit() && !s.Is('-') && !s.Is(' ') && !s.Is('\t') {
			return nil, s.Errorf(domain.ErrUnexpectedToken, "malformed face vertex reference")
		}
	}

	if len(face) < 3 {
		return nil, s.Errorf(domain.ErrUnexpectedToken, "face with %d vertices, need at least 3", len(face))
	}
	return face, s.EndLine()
}

// readVertexRef reads an absolute or relative reference to one of the
// vertices declared so far
func readVertexRef(s *scanner.Scanner, vertices uint64) (domain.ID, error) {
	start := s.Pos()
	if !s.Is('-') {
		id, err := scanNodeID(s)
		if err != nil {
			return 0, err
		}
		if id >= vertices {
			return 0, &domain.ParseError{Offset: start, Err: domain.ErrUnexpectedToken,
				Detail: fmt.Sprintf("vertex %d referenced before it is declared, %d vertices so far", id+1, vertices)}
		}
		return id, nil
	}

	_ = s.Advance()
	back, err := s.ScanUint(64)
	if err != nil {
		return 0, err
	}
	if back == 0 || back > vertices {
		return 0, &domain.ParseError{Offset: start, Err: domain.ErrUnexpectedToken, Detail: "relative vertex reference out of range"}
	}
	return vertices - back, nil
}
