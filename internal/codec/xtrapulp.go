package codec

import (
	"fmt"
	"math"
	"os"

	"graphtools/internal/domain"
	"graphtools/internal/progress"
)

// XtrapulpWriter streams 0-based (source, target) pairs as 32- or 64-bit
// little endian integers
type XtrapulpWriter struct {
	path   string
	f      *os.File
	out    *chunkBuffer
	wide   bool
	total  uint64
	ticker *progress.Ticker
	pairs  uint64
	closed bool
}

// CreateXtrapulp creates (or truncates) path for the m directed edges of h.
// idBits must be 32 or 64.
func CreateXtrapulp(path string, h domain.Header, idBits uint, opts Options) (*XtrapulpWriter, error) {
	if idBits != 32 && idBits != 64 {
		return nil, fmt.Errorf("xtrapulp ids must be 32 or 64 bits, got %d: %w", idBits, domain.ErrUsage)
	}
	f, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	return &XtrapulpWriter{
		path:   path,
		f:      f,
		out:    newChunkBuffer(f, opts.bufferSize()),
		wide:   idBits == 64,
		total:  h.M,
		ticker: opts.ticker(),
	}, nil
}

// WriteEdge appends one pair. Ids that do not fit 32 bits fail the narrow
// format rather than being truncated.
func (w *XtrapulpWriter) WriteEdge(e domain.Edge) error {
	if w.wide {
		w.out.writeUint64LE(e.From)
		w.out.writeUint64LE(e.To)
	} else {
		if e.From > math.MaxUint32 || e.To > math.MaxUint32 {
			return fmt.Errorf("edge (%d, %d) does not fit 32-bit ids: %w", e.From+1, e.To+1, domain.ErrEncodingRange)
		}
		w.out.writeUint32LE(uint32(e.From))
		w.out.writeUint32LE(uint32(e.To))
	}
	w.pairs++
	w.ticker.Tick(w.pairs, w.total)
	return w.out.err
}

// Pairs returns the number of pairs written
func (w *XtrapulpWriter) Pairs() uint64 {
	return w.pairs
}

// Close flushes and closes the file
func (w *XtrapulpWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.ticker.Done(w.total)
	return closeOutput(w.path, w.out, w.f)
}

// Abort closes the writer and removes the partial file
func (w *XtrapulpWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return abortOutput(w.path, w.f)
}
