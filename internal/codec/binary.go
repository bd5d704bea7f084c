package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"graphtools/internal/domain"
	"graphtools/internal/mmap"
	"graphtools/internal/progress"
)

const (
	binaryVersion     = 3
	binaryHeaderWords = 3
	binaryWordSize    = 8
)

// BinaryHeader is the leading {version, n, m} triple of a binary graph.
// M is the directed edge count.
type BinaryHeader struct {
	Version uint64
	N       uint64
	M       uint64
}

// targetsOffset returns the byte offset of the first edge target
func (h BinaryHeader) targetsOffset() uint64 {
	return (binaryHeaderWords + h.N + 1) * binaryWordSize
}

// FileSize returns the exact size of a well-formed file with this header
func (h BinaryHeader) FileSize() uint64 {
	return h.targetsOffset() + h.M*binaryWordSize
}

// BinaryWriter streams a binary adjacency file: the header, n+1 absolute
// byte offsets into the target array, then m edge targets, all 64-bit
// little endian.
type BinaryWriter struct {
	path    string
	f       *os.File
	out     *chunkBuffer
	header  BinaryHeader
	ticker  *progress.Ticker
	offsets uint64
	last    uint64
	targets uint64
	closed  bool
}

// CreateBinary creates (or truncates) path and writes the header
func CreateBinary(path string, h domain.Header, opts Options) (*BinaryWriter, error) {
	f, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	w := &BinaryWriter{
		path:   path,
		f:      f,
		out:    newChunkBuffer(f, opts.bufferSize()),
		header: BinaryHeader{Version: binaryVersion, N: h.N, M: h.M},
		ticker: opts.ticker(),
	}
	w.out.writeUint64LE(w.header.Version)
	w.out.writeUint64LE(w.header.N)
	w.out.writeUint64LE(w.header.M)
	return w, nil
}

// WriteOffsets appends node offsets given as indices into the edge target
// array; they are stored as absolute byte offsets. Exactly n+1
// non-decreasing indices ending at m must be written before any target.
func (w *BinaryWriter) WriteOffsets(indices ...uint64) error {
	for _, index := range indices {
		switch {
		case w.offsets == w.header.N+1:
			return fmt.Errorf("offset %d: all %d offsets written: %w", w.offsets, w.header.N+1, domain.ErrEncodingRange)
		case index < w.last:
			return fmt.Errorf("offset %d: index %d decreases from %d: %w", w.offsets, index, w.last, domain.ErrEncodingRange)
		case index > w.header.M:
			return fmt.Errorf("offset %d: index %d exceeds m=%d: %w", w.offsets, index, w.header.M, domain.ErrEncodingRange)
		}
		w.out.writeUint64LE(w.header.targetsOffset() + index*binaryWordSize)
		w.last = index
		w.offsets++
	}
	return w.out.err
}

// WriteTargets appends 0-based edge targets
func (w *BinaryWriter) WriteTargets(targets ...domain.ID) error {
	if w.offsets != w.header.N+1 {
		return fmt.Errorf("targets before all offsets were written (%d of %d): %w", w.offsets, w.header.N+1, domain.ErrEncodingRange)
	}
	for _, v := range targets {
		if v >= w.header.N {
			return fmt.Errorf("target %d exceeds n=%d: %w", v+1, w.header.N, domain.ErrEncodingRange)
		}
		if w.targets == w.header.M {
			return fmt.Errorf("more than m=%d targets: %w", w.header.M, domain.ErrEncodingRange)
		}
		w.out.writeUint64LE(v)
		w.targets++
		w.ticker.Tick(w.targets, w.header.M)
	}
	return w.out.err
}

// Close verifies that the file is complete and closes it
func (w *BinaryWriter) Close() error {
	if w.closed {
		return nil
	}
	switch {
	case w.offsets != w.header.N+1:
		_ = w.Abort()
		return fmt.Errorf("wrote %d of %d offsets: %w", w.offsets, w.header.N+1, domain.ErrEncodingRange)
	case w.last != w.header.M:
		_ = w.Abort()
		return fmt.Errorf("last offset index %d, expected m=%d: %w", w.last, w.header.M, domain.ErrEncodingRange)
	case w.targets != w.header.M:
		_ = w.Abort()
		return fmt.Errorf("wrote %d of %d targets: %w", w.targets, w.header.M, domain.ErrEncodingRange)
	}
	w.closed = true
	w.ticker.Done(w.header.M)
	return closeOutput(w.path, w.out, w.f)
}

// Abort closes the writer and removes the partial file
func (w *BinaryWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return abortOutput(w.path, w.f)
}

// ReadBinaryHeader reads the {version, n, m} header
func ReadBinaryHeader(r io.Reader) (BinaryHeader, error) {
	var words [binaryHeaderWords]uint64
	if err := binary.Read(r, binary.LittleEndian, &words); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return BinaryHeader{}, fmt.Errorf("read binary header: %w", domain.ErrEndOfInput)
		}
		return BinaryHeader{}, fmt.Errorf("read binary header: %w: %v", domain.ErrIO, err)
	}
	h := BinaryHeader{Version: words[0], N: words[1], M: words[2]}
	if h.Version != binaryVersion {
		return BinaryHeader{}, fmt.Errorf("binary version %d, expected %d: %w", h.Version, binaryVersion, domain.ErrMalformedHeader)
	}
	return h, nil
}

// ReadBinaryHeaderFile reads only the header of a binary graph file
func ReadBinaryHeaderFile(path string) (BinaryHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return BinaryHeader{}, fmt.Errorf("open %s: %w", path, domain.ErrInputNotFound)
		}
		return BinaryHeader{}, fmt.Errorf("open %s: %w: %v", path, domain.ErrIO, err)
	}
	defer f.Close()
	return ReadBinaryHeader(f)
}

// BinaryGraph is a binary adjacency file loaded into memory. Offsets are
// converted back to indices into Targets.
type BinaryGraph struct {
	Header  BinaryHeader
	Offsets []uint64
	Targets []domain.ID
}

// Neighbors returns the targets of node u
func (g *BinaryGraph) Neighbors(u domain.ID) []domain.ID {
	return g.Targets[g.Offsets[u]:g.Offsets[u+1]]
}

// Degree returns the out-degree of node u
func (g *BinaryGraph) Degree(u domain.ID) uint64 {
	return g.Offsets[u+1] - g.Offsets[u]
}

// ReadBinaryGraph loads and checks a binary adjacency file
func ReadBinaryGraph(path string) (*BinaryGraph, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := f.Bytes()
	if len(buf) < binaryHeaderWords*binaryWordSize {
		return nil, &domain.ParseError{Path: path, Offset: len(buf), Err: domain.ErrEndOfInput, Detail: "truncated header"}
	}
	h := BinaryHeader{
		Version: binary.LittleEndian.Uint64(buf[0:]),
		N:       binary.LittleEndian.Uint64(buf[8:]),
		M:       binary.LittleEndian.Uint64(buf[16:]),
	}
	if h.Version != binaryVersion {
		return nil, &domain.ParseError{Path: path, Err: domain.ErrMalformedHeader, Detail: fmt.Sprintf("version %d, expected %d", h.Version, binaryVersion)}
	}
	if h.N > uint64(len(buf))/binaryWordSize || h.M > uint64(len(buf))/binaryWordSize || h.FileSize() != uint64(len(buf)) {
		return nil, &domain.ParseError{Path: path, Offset: len(buf), Err: domain.ErrMalformedHeader, Detail: fmt.Sprintf("file size %d does not match n=%d m=%d", len(buf), h.N, h.M)}
	}

	g := &BinaryGraph{
		Header:  h,
		Offsets: make([]uint64, h.N+1),
		Targets: make([]domain.ID, h.M),
	}
	pos := binaryHeaderWords * binaryWordSize
	for i := range g.Offsets {
		abs := binary.LittleEndian.Uint64(buf[pos:])
		if abs < h.targetsOffset() || (abs-h.targetsOffset())%binaryWordSize != 0 {
			return nil, &domain.ParseError{Path: path, Offset: pos, Err: domain.ErrUnexpectedToken, Detail: fmt.Sprintf("offset %d is not a target position", abs)}
		}
		g.Offsets[i] = (abs - h.targetsOffset()) / binaryWordSize
		if g.Offsets[i] > h.M || (i > 0 && g.Offsets[i] < g.Offsets[i-1]) {
			return nil, &domain.ParseError{Path: path, Offset: pos, Err: domain.ErrUnexpectedToken, Detail: "offsets are not monotone within the target array"}
		}
		pos += binaryWordSize
	}
	if g.Offsets[0] != 0 || g.Offsets[h.N] != h.M {
		return nil, &domain.ParseError{Path: path, Offset: pos, Err: domain.ErrUnexpectedToken, Detail: "offsets do not span the target array"}
	}
	for i := range g.Targets {
		g.Targets[i] = binary.LittleEndian.Uint64(buf[pos:])
		if g.Targets[i] >= h.N {
			return nil, &domain.ParseError{Path: path, Offset: pos, Err: domain.ErrUnexpectedToken, Detail: fmt.Sprintf("target %d exceeds n=%d", g.Targets[i]+1, h.N)}
		}
		pos += binaryWordSize
	}
	return g, nil
}
