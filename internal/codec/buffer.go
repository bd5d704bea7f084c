package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"graphtools/internal/domain"
)

// flushMargin is the headroom kept free in a chunk so that a record
// started below the threshold always fits
const flushMargin = 1024

// chunkBuffer collects output in memory and hands it to the underlying
// writer in chunks. The first write error is kept and returned by every
// later Flush.
type chunkBuffer struct {
	w       io.Writer
	buf     []byte
	limit   int
	err     error
	flushed int64
}

func newChunkBuffer(w io.Writer, size int) *chunkBuffer {
	if size < 2*flushMargin {
		size = 2 * flushMargin
	}
	return &chunkBuffer{
		w:     w,
		buf:   make([]byte, 0, size),
		limit: size - flushMargin,
	}
}

func (b *chunkBuffer) writeByte(c byte) {
	b.buf = append(b.buf, c)
	b.maybeFlush()
}

func (b *chunkBuffer) writeString(s string) {
	b.buf = append(b.buf, s...)
	b.maybeFlush()
}

func (b *chunkBuffer) writeUint(v uint64) {
	b.buf = strconv.AppendUint(b.buf, v, 10)
	b.maybeFlush()
}

func (b *chunkBuffer) writeInt(v int64) {
	b.buf = strconv.AppendInt(b.buf, v, 10)
	b.maybeFlush()
}

func (b *chunkBuffer) writeUint64LE(v uint64) {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, v)
	b.maybeFlush()
}

func (b *chunkBuffer) writeUint32LE(v uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	b.maybeFlush()
}

func (b *chunkBuffer) maybeFlush() {
	if len(b.buf) >= b.limit {
		_ = b.Flush()
	}
}

// Flush writes out everything buffered so far
func (b *chunkBuffer) Flush() error {
	if b.err != nil {
		b.buf = b.buf[:0]
		return b.err
	}
	if len(b.buf) == 0 {
		return nil
	}
	n, err := b.w.Write(b.buf)
	b.flushed += int64(n)
	b.buf = b.buf[:0]
	if err != nil {
		b.err = fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	return b.err
}

// Size returns the number of bytes accepted so far
func (b *chunkBuffer) Size() int64 {
	return b.flushed + int64(len(b.buf))
}

func createOutput(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w: %v", path, domain.ErrIO, err)
	}
	return f, nil
}

// closeOutput flushes out and closes f, reporting the first failure
func closeOutput(path string, out *chunkBuffer, f *os.File) error {
	flushErr := out.Flush()
	closeErr := f.Close()
	if flushErr != nil {
		return fmt.Errorf("write %s: %w", path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w: %v", path, domain.ErrIO, closeErr)
	}
	return nil
}

// abortOutput closes f and removes the partial file
func abortOutput(path string, f *os.File) error {
	closeErr := f.Close()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w: %v", path, domain.ErrIO, err)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w: %v", path, domain.ErrIO, closeErr)
	}
	return nil
}
