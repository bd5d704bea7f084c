package codec

import (
	"fmt"
	"os"

	"graphtools/internal/domain"
	"graphtools/internal/progress"
)

// MetisWriter streams a METIS file. Node lines are written strictly in id
// order; every node that receives no edges still gets its own blank line.
type MetisWriter struct {
	path   string
	f      *os.File
	out    *chunkBuffer
	header domain.Header
	ticker *progress.Ticker

	// next is the first node whose line has not been started
	next domain.ID
	// open is set while the line of node next-1 accepts edges
	open   bool
	edges  uint64
	closed bool
}

// CreateMetis creates (or truncates) path and writes the header line
// `n m [format]` with m as the undirected count
func CreateMetis(path string, h domain.Header, opts Options) (*MetisWriter, error) {
	f, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	w := &MetisWriter{
		path:   path,
		f:      f,
		out:    newChunkBuffer(f, opts.bufferSize()),
		header: h,
		ticker: opts.ticker(),
	}

	w.out.writeUint(h.N)
	w.out.writeByte(' ')
	w.out.writeUint(h.UndirectedEdges())
	if code := h.Format(); code != 0 {
		w.out.writeByte(' ')
		w.out.writeUint(code)
	}
	w.out.writeByte('\n')
	return w, nil
}

// Header returns the header written to the file
func (w *MetisWriter) Header() domain.Header {
	return w.header
}

// Next returns the first node id whose line has not been written yet
func (w *MetisWriter) Next() domain.ID {
	return w.next
}

// Edges returns the number of directed edges written so far
func (w *MetisWriter) Edges() uint64 {
	return w.edges
}

// WriteNode starts the line of node u, padding every skipped node with a
// blank line. weight is written only if the header declares node weights.
func (w *MetisWriter) WriteNode(u domain.ID, weight domain.Weight) error {
	if w.closed {
		return fmt.Errorf("write %s: writer is closed", w.path)
	}
	if u < w.next {
		return fmt.Errorf("node %d: line already written: %w", u+1, domain.ErrEncodingRange)
	}
	if u >= w.header.N {
		return fmt.Errorf("node %d exceeds n=%d: %w", u+1, w.header.N, domain.ErrEncodingRange)
	}

	w.pad(u)
	if w.header.HasNodeWeights {
		w.out.writeInt(weight)
		w.out.writeByte(' ')
	}
	w.open = true
	w.next = u + 1
	return nil
}

// WriteEdge appends e to the line of its source node. Edges must arrive
// sorted by source; a new source starts a new line.
func (w *MetisWriter) WriteEdge(e domain.Edge) error {
	if !w.open || e.From != w.next-1 {
		if err := w.WriteNode(e.From, 1); err != nil {
			return err
		}
	}
	if e.To >= w.header.N {
		return fmt.Errorf("edge (%d, %d): target exceeds n=%d: %w", e.From+1, e.To+1, w.header.N, domain.ErrEncodingRange)
	}

	w.out.writeUint(e.To + 1)
	w.out.writeByte(' ')
	if w.header.HasEdgeWeights {
		w.out.writeInt(e.Weight)
		w.out.writeByte(' ')
	}
	w.edges++
	w.ticker.Tick(w.edges, w.header.M)
	return nil
}

// WritePart writes the lines of nodes [from, to). edges must be sorted by
// source and every source must lie in the range. A gap between the end of
// the previous part and from is padded with blank lines; overlapping a
// previous part is an error.
func (w *MetisWriter) WritePart(edges []domain.Edge, from, to domain.ID) error {
	if from < w.next {
		return fmt.Errorf("part [%d, %d) overlaps nodes written up to %d: %w", from+1, to+1, w.next, domain.ErrEncodingRange)
	}
	if to < from || to > w.header.N {
		return fmt.Errorf("part [%d, %d) is inverted or exceeds n=%d: %w", from+1, to+1, w.header.N, domain.ErrEncodingRange)
	}

	w.pad(from)
	for _, e := range edges {
		if e.From < from || e.From >= to {
			return fmt.Errorf("edge (%d, %d) outside part [%d, %d): %w", e.From+1, e.To+1, from+1, to+1, domain.ErrEncodingRange)
		}
		if err := w.WriteEdge(e); err != nil {
			return err
		}
	}
	w.pad(to)
	return w.out.err
}

// pad ends the open line and writes blank lines up to node to
func (w *MetisWriter) pad(to domain.ID) {
	if w.open {
		w.out.writeByte('\n')
		w.open = false
	}
	for ; w.next < to; w.next++ {
		w.out.writeByte('\n')
	}
}

// Close pads the file to n node lines and closes it. Further calls are no-ops.
func (w *MetisWriter) Close(n domain.ID) error {
	if w.closed {
		return nil
	}
	if n < w.next {
		_ = w.Abort()
		return fmt.Errorf("close at n=%d after writing %d nodes: %w", n, w.next, domain.ErrEncodingRange)
	}
	w.pad(n)
	w.closed = true
	w.ticker.Done(w.header.M)
	return closeOutput(w.path, w.out, w.f)
}

// Abort closes the writer without padding and removes the partial file
func (w *MetisWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return abortOutput(w.path, w.f)
}
