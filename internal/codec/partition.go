package codec

import (
	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

// DecodeAssignment reads a partition or clustering file: one block id per
// line, line i holding the block of node i. Trailing blank lines are
// tolerated; a blank line followed by more values is not.
func DecodeAssignment(path string, opts Options) (domain.Assignment, error) {
	var out domain.Assignment
	err := decodeFile(path, "partition", func(s *scanner.Scanner) error {
		ticker := opts.ticker()
		total := uint64(s.Len())
		blankAt := -1

		for {
			s.SkipSpaces()
			if !s.Valid() {
				break
			}
			if s.AtEOL() {
				if blankAt < 0 {
					blankAt = s.Pos()
				}
				s.SkipLine()
				continue
			}
			if blankAt >= 0 {
				return &domain.ParseError{
					Offset: blankAt,
					Err:    domain.ErrUnexpectedToken,
					Detail: "blank line inside assignment",
				}
			}

			block, err := s.ScanUint(64)
			if err != nil {
				return err
			}
			if err := s.EndLine(); err != nil {
				return err
			}
			out = append(out, block)
			ticker.Tick(uint64(s.Pos()), total)
		}

		ticker.Done(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
