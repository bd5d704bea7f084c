// Package scanner implements a bounds-checked cursor over an in-memory byte
// buffer, typically a memory-mapped input file.
//
// Every operation is synchronous and never reads past the end of the buffer:
// peeking at the end reports ErrEndOfInput instead. Number scanning consumes
// a maximal run of decimal digits and the spaces that follow it, and reports
// overflow of the requested bit width.
package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"

	"graphtools/internal/domain"
)

// ErrOverflow is returned when a number does not fit the requested width.
// It wraps domain.ErrUnexpectedToken so overflowing input classifies as malformed.
var ErrOverflow = fmt.Errorf("integer overflow: %w", domain.ErrUnexpectedToken)

// Scanner is a cursor over a byte buffer
type Scanner struct {
	buf []byte
	pos int
}

// New creates a scanner positioned at the start of buf
func New(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Pos returns the cursor offset
func (s *Scanner) Pos() int {
	return s.pos
}

// Len returns the buffer length
func (s *Scanner) Len() int {
	return len(s.buf)
}

// Valid reports whether the cursor is inside the buffer
func (s *Scanner) Valid() bool {
	return s.pos < len(s.buf)
}

// Current returns the byte under the cursor
func (s *Scanner) Current() (byte, error) {
	if !s.Valid() {
		return 0, s.errorf(domain.ErrEndOfInput, "")
	}
	return s.buf[s.pos], nil
}

// Peek returns the byte under the cursor and whether there is one
func (s *Scanner) Peek() (byte, bool) {
	if !s.Valid() {
		return 0, false
	}
	return s.buf[s.pos], true
}

// Is reports whether the cursor is on c
func (s *Scanner) Is(c byte) bool {
	return s.Valid() && s.buf[s.pos] == c
}

// Advance moves the cursor by one byte
func (s *Scanner) Advance() error {
	if !s.Valid() {
		return s.errorf(domain.ErrEndOfInput, "")
	}
	s.pos++
	return nil
}

// SkipSpaces consumes a run of ASCII spaces
func (s *Scanner) SkipSpaces() {
	for s.pos < len(s.buf) && s.buf[s.pos] == ' ' {
		s.pos++
	}
}

// SkipLine consumes through the next newline, or to the end of input
func (s *Scanner) SkipLine() {
	if i := bytes.IndexByte(s.buf[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.buf)
}

// SkipComments skips lines whose first non-space byte is marker and leaves
// the cursor on the first byte of the next line's content
func (s *Scanner) SkipComments(marker byte) {
	s.SkipSpaces()
	for s.Is(marker) {
		s.SkipLine()
		s.SkipSpaces()
	}
}

// SkipBlankLines skips lines containing nothing but spaces
func (s *Scanner) SkipBlankLines() {
	for {
		start := s.pos
		s.SkipSpaces()
		if s.AtEOL() && s.Valid() {
			s.SkipLine()
			continue
		}
		s.pos = start
		return
	}
}

// AtDigit reports whether the cursor is on a decimal digit
func (s *Scanner) AtDigit() bool {
	return s.Valid() && isDigit(s.buf[s.pos])
}

// AtEOL reports whether the cursor is on a line break or at the end of input
func (s *Scanner) AtEOL() bool {
	if !s.Valid() {
		return true
	}
	c := s.buf[s.pos]
	return c == '\n' || (c == '\r' && s.pos+1 < len(s.buf) && s.buf[s.pos+1] == '\n')
}

// EndLine skips trailing spaces and consumes the line break. The end of
// input counts as a line break.
func (s *Scanner) EndLine() error {
	s.SkipSpaces()
	if !s.Valid() {
		return nil
	}
	if s.buf[s.pos] == '\r' && s.pos+1 < len(s.buf) && s.buf[s.pos+1] == '\n' {
		s.pos += 2
		return nil
	}
	if s.buf[s.pos] == '\n' {
		s.pos++
		return nil
	}
	return s.errorf(domain.ErrUnexpectedToken, "expected end of line, found %q", s.buf[s.pos])
}

// ScanUint consumes a decimal number that must fit into width bits, then
// skips the spaces after it
func (s *Scanner) ScanUint(width uint) (uint64, error) {
	start := s.pos
	var number uint64
	overflow := false

	for s.pos < len(s.buf) && isDigit(s.buf[s.pos]) {
		hi, lo := bits.Mul64(number, 10)
		sum, carry := bits.Add64(lo, uint64(s.buf[s.pos]-'0'), 0)
		if hi != 0 || carry != 0 {
			overflow = true
		}
		number = sum
		s.pos++
	}

	if s.pos == start {
		return 0, s.unexpected("expected a number")
	}
	if overflow || (width < 64 && number>>width != 0) {
		return 0, &domain.ParseError{
			Offset: start,
			Err:    ErrOverflow,
			Detail: fmt.Sprintf("%s does not fit into %d bits", s.buf[start:s.pos], width),
		}
	}

	s.SkipSpaces()
	return number, nil
}

// ScanInt consumes an optionally negative decimal number that fits into a
// signed integer of width bits
func (s *Scanner) ScanInt(width uint) (int64, error) {
	start := s.pos
	negative := false
	if s.Is('-') {
		negative = true
		s.pos++
	}

	magnitude, err := s.ScanUint(64)
	if err != nil {
		s.pos = start
		if errors.Is(err, ErrOverflow) {
			return 0, err
		}
		return 0, s.unexpected("expected a signed number")
	}

	limit := uint64(1) << (min(width, 64) - 1)
	if (!negative && magnitude > limit-1) || (negative && magnitude > limit) {
		return 0, &domain.ParseError{
			Offset: start,
			Err:    ErrOverflow,
			Detail: fmt.Sprintf("%s does not fit into %d bits", s.buf[start:s.pos], width),
		}
	}

	if negative {
		return -int64(magnitude-1) - 1, nil
	}
	return int64(magnitude), nil
}

// SkipUint consumes a run of digits without computing its value
func (s *Scanner) SkipUint() error {
	start := s.pos
	for s.pos < len(s.buf) && isDigit(s.buf[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return s.unexpected("expected a number")
	}
	s.SkipSpaces()
	return nil
}

// SkipToken consumes a run of non-space, non-newline bytes and the spaces after it
func (s *Scanner) SkipToken() {
	for s.pos < len(s.buf) && s.buf[s.pos] != ' ' && s.buf[s.pos] != '\n' && s.buf[s.pos] != '\r' {
		s.pos++
	}
	s.SkipSpaces()
}

// HasLiteral reports whether the input at the cursor starts with lit
func (s *Scanner) HasLiteral(lit string) bool {
	return bytes.HasPrefix(s.buf[s.pos:], []byte(lit))
}

// HasLiteralFold is HasLiteral ignoring ASCII case
func (s *Scanner) HasLiteralFold(lit string) bool {
	if len(s.buf)-s.pos < len(lit) {
		return false
	}
	return bytes.EqualFold(s.buf[s.pos:s.pos+len(lit)], []byte(lit))
}

// ConsumeLiteral advances past lit or fails with ErrUnexpectedToken
func (s *Scanner) ConsumeLiteral(lit string) error {
	if !s.HasLiteral(lit) {
		return s.unexpected("expected %q", lit)
	}
	s.pos += len(lit)
	return nil
}

// ConsumeLiteralFold is ConsumeLiteral ignoring ASCII case
func (s *Scanner) ConsumeLiteralFold(lit string) error {
	if !s.HasLiteralFold(lit) {
		return s.unexpected("expected %q", lit)
	}
	s.pos += len(lit)
	return nil
}

// Errorf builds a ParseError at the cursor
func (s *Scanner) Errorf(err error, format string, args ...any) error {
	return s.errorf(err, format, args...)
}

func (s *Scanner) unexpected(format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	if c, ok := s.Peek(); ok {
		detail += fmt.Sprintf(", found %q", c)
	} else {
		detail += ", found end of input"
	}
	return &domain.ParseError{Offset: s.pos, Err: domain.ErrUnexpectedToken, Detail: detail}
}

func (s *Scanner) errorf(err error, format string, args ...any) error {
	pe := &domain.ParseError{Offset: s.pos, Err: err}
	if format != "" {
		pe.Detail = fmt.Sprintf(format, args...)
	}
	return pe
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
