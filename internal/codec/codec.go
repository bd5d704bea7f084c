// Package codec decodes and encodes the graph interchange formats.
//
// Decoders work on a memory-mapped view of the whole input file and push
// records into a Visitor in file order. Encoders stream records into a
// chunked buffer so that arbitrarily large graphs are written with bounded
// memory. Text formats use 1-based node ids on disk; every id crossing this
// package's API is 0-based.
package codec

import (
	"graphtools/internal/domain"
	"graphtools/internal/progress"
)

// Visitor receives decoded records.
//
// Header is called exactly once: before the body for formats that declare
// their size up front, after the body for formats that do not (OBJ).
// Returning an error from any method stops decoding and the error is
// returned to the caller unchanged.
type Visitor interface {
	Header(h domain.Header) error
	Node(u domain.ID, weight domain.Weight) error
	Edge(e domain.Edge) error
}

// VisitorFuncs adapts plain functions to a Visitor. Nil fields are ignored.
type VisitorFuncs struct {
	OnHeader func(h domain.Header) error
	OnNode   func(u domain.ID, weight domain.Weight) error
	OnEdge   func(e domain.Edge) error
}

func (f VisitorFuncs) Header(h domain.Header) error {
	if f.OnHeader == nil {
		return nil
	}
	return f.OnHeader(h)
}

func (f VisitorFuncs) Node(u domain.ID, weight domain.Weight) error {
	if f.OnNode == nil {
		return nil
	}
	return f.OnNode(u, weight)
}

func (f VisitorFuncs) Edge(e domain.Edge) error {
	if f.OnEdge == nil {
		return nil
	}
	return f.OnEdge(e)
}

// Decoder streams one graph file into a Visitor
type Decoder interface {
	Decode(path string, v Visitor, opts Options) error
	Format() string
}

// DefaultBufferSize is the capacity of the encoders' output buffer
const DefaultBufferSize = 1 << 20

// Options tunes progress reporting and output buffering
type Options struct {
	// Progress receives (bytes consumed, file size) while decoding and
	// (records written, records expected) while encoding
	Progress progress.Func
	// Every is the record cadence of Progress; 0 selects progress.DefaultEvery
	Every uint64
	// BufferSize is the encoder buffer capacity; 0 selects DefaultBufferSize
	BufferSize int
}

func (o Options) ticker() *progress.Ticker {
	return progress.NewTicker(o.Progress, o.Every)
}

func (o Options) bufferSize() int {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.BufferSize
}
