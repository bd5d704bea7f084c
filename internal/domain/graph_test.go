package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	tests := []struct {
		format      uint64
		nodeWeights bool
		edgeWeights bool
	}{
		{0, false, false},
		{1, false, true},
		{10, true, false},
		{11, true, true},
	}

	for _, tt := range tests {
		h, err := NewHeader(5, 3, tt.format)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), h.N)
		assert.Equal(t, uint64(6), h.M, "M is the directed count")
		assert.Equal(t, tt.nodeWeights, h.HasNodeWeights)
		assert.Equal(t, tt.edgeWeights, h.HasEdgeWeights)
		assert.Equal(t, tt.format, h.Format())
		assert.Equal(t, uint64(3), h.UndirectedEdges())
	}

	t.Run("rejects unknown format codes", func(t *testing.T) {
		for _, code := range []uint64{2, 100, 12, 111} {
			_, err := NewHeader(1, 0, code)
			assert.Error(t, err, "format %d", code)
		}
	})
}

func TestHeaderMaxUndirectedEdges(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{4, 6},
		{5, 10},
		{1 << 32, (1 << 31) * ((1 << 32) - 1)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Header{N: tt.n}.MaxUndirectedEdges(), "n=%d", tt.n)
	}
}

func TestLimits(t *testing.T) {
	l := Limits{IDBits: 32, WeightBits: 32}
	assert.Equal(t, uint64(1<<32-1), l.MaxID())
	assert.Equal(t, int64(1<<31-1), l.MaxWeight())
	assert.NoError(t, l.Validate())

	d := DefaultLimits()
	assert.Equal(t, ^uint64(0), d.MaxID())
	assert.Equal(t, int64(1<<63-1), d.MaxWeight())

	assert.Error(t, Limits{IDBits: 16, WeightBits: 64}.Validate())
	assert.Error(t, Limits{IDBits: 64, WeightBits: 8}.Validate())
}

func TestEdgeHelpers(t *testing.T) {
	e := Edge{From: 1, To: 4, Weight: 7}
	assert.Equal(t, Edge{From: 4, To: 1, Weight: 7}, e.Reverse())
	assert.False(t, e.IsSelfLoop())
	assert.True(t, NewEdge(3, 3).IsSelfLoop())

	assert.Negative(t, CompareEdges(Edge{From: 0, To: 5}, Edge{From: 1, To: 0}))
	assert.Negative(t, CompareEdges(Edge{From: 1, To: 2}, Edge{From: 1, To: 3}))
	assert.Zero(t, CompareEdges(e, e))

	sym := Symmetrize([]Edge{e})
	assert.Equal(t, []Edge{e, e.Reverse()}, sym)
}

func TestAssignment(t *testing.T) {
	assert.Equal(t, uint64(0), Assignment(nil).Blocks())
	a := Assignment{0, 3, 1, 1}
	assert.Equal(t, uint64(4), a.Blocks())
	assert.True(t, a.Covers(4))
	assert.False(t, a.Covers(5))
}
