// Package progress carries progress callbacks from decode and encode loops
// to whatever presents them.
package progress

import (
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Func receives the amount of work done and the total. It must not block.
type Func func(current, total uint64)

// Nop ignores every report
func Nop(current, total uint64) {}

// OrNop returns fn, or Nop when fn is nil
func OrNop(fn Func) Func {
	if fn == nil {
		return Nop
	}
	return fn
}

// DefaultEvery is the record cadence used when none is configured
const DefaultEvery uint64 = 1 << 20

// Ticker calls a Func once every Every records
type Ticker struct {
	fn      Func
	every   uint64
	records uint64
}

// NewTicker creates a ticker; every == 0 selects DefaultEvery
func NewTicker(fn Func, every uint64) *Ticker {
	if every == 0 {
		every = DefaultEvery
	}
	return &Ticker{fn: OrNop(fn), every: every}
}

// Tick counts one record and reports when the cadence is reached
func (t *Ticker) Tick(current, total uint64) {
	t.records++
	if t.records%t.every == 0 {
		t.fn(current, total)
	}
}

// Records returns the number of ticks so far
func (t *Ticker) Records() uint64 {
	return t.records
}

// Done reports completion unconditionally
func (t *Ticker) Done(total uint64) {
	t.fn(total, total)
}

// Log returns a Func that logs at most one line per 10% step
func Log(logger logrus.FieldLogger, caption string) Func {
	last := -1
	return func(current, total uint64) {
		if total == 0 {
			return
		}
		step := int(min(current, total) * 10 / total)
		if step <= last {
			return
		}
		last = step
		logger.WithFields(logrus.Fields{
			"action":  caption,
			"percent": step * 10,
		}).Infof("%s: %s of %s", caption, humanize.Comma(int64(min(current, total))), humanize.Comma(int64(total)))
	}
}
