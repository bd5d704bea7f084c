package codec

import (
	"slices"

	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

const edgeListComment = 'c'

// EdgeList is a materialized edge list sorted by (from, to)
type EdgeList struct {
	// Header holds n and the directed edge count m as declared by the file
	Header domain.Header
	Edges  []domain.Edge
}

// MaxSource returns the largest source id, and false for an empty list
func (l *EdgeList) MaxSource() (domain.ID, bool) {
	if len(l.Edges) == 0 {
		return 0, false
	}
	return l.Edges[len(l.Edges)-1].From, true
}

// DecodeEdgeList reads a `p [token] n m` header followed by `e u v` lines.
// Lines starting with 'c' are comments.
func DecodeEdgeList(path string, opts Options) (*EdgeList, error) {
	list := &EdgeList{}
	err := decodeFile(path, "edgelist", func(s *scanner.Scanner) error {
		s.SkipComments(edgeListComment)
		if err := s.ConsumeLiteral("p"); err != nil {
			return malformedHeader(err)
		}
		s.SkipSpaces()
		if !s.AtDigit() {
			s.SkipToken()
		}
		n, err := s.ScanUint(64)
		if err != nil {
			return malformedHeader(err)
		}
		m, err := s.ScanUint(64)
		if err != nil {
			return malformedHeader(err)
		}
		if err := s.EndLine(); err != nil {
			return malformedHeader(err)
		}
		list.Header = domain.Header{N: n, M: m}
		list.Edges = make([]domain.Edge, 0, min(m, 1<<24))

		ticker := opts.ticker()
		total := uint64(s.Len())

		for {
			s.SkipSpaces()
			switch {
			case !s.Valid():
				ticker.Done(total)
				return nil
			case s.AtEOL(), s.Is(edgeListComment):
				s.SkipLine()
				continue
			}

			if err := s.ConsumeLiteral("e"); err != nil {
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
			if err := s.EndLine(); err != nil {
				return err
			}
			list.Edges = append(list.Edges, domain.NewEdge(from, to))
			ticker.Tick(uint64(s.Pos()), total)
		}
	})
	if err != nil {
		return nil, err
	}

	if !slices.IsSortedFunc(list.Edges, domain.CompareEdges) {
		slices.SortFunc(list.Edges, domain.CompareEdges)
	}
	return list, nil
}
