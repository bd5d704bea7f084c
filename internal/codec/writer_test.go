package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphtools/internal/domain"
)

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestChunkBuffer(t *testing.T) {
	t.Run("flushes once the threshold is reached", func(t *testing.T) {
		var sink bytes.Buffer
		b := newChunkBuffer(&sink, 4096)
		for i := 0; i < 3071; i++ {
			b.writeByte('x')
		}
		assert.Zero(t, sink.Len(), "below capacity minus margin")

		b.writeByte('x')
		assert.Equal(t, 3072, sink.Len())
		assert.Equal(t, int64(3072), b.Size())

		b.writeUint(12345)
		b.writeInt(-7)
		require.NoError(t, b.Flush())
		assert.Equal(t, "12345-7", sink.String()[3072:])
	})

	t.Run("keeps the first error", func(t *testing.T) {
		fw := &failingWriter{}
		b := newChunkBuffer(fw, 0)
		b.writeString("abc")
		err := b.Flush()
		assert.ErrorIs(t, err, domain.ErrIO)

		b.writeString("def")
		assert.ErrorIs(t, b.Flush(), domain.ErrIO)
		assert.Equal(t, 1, fw.writes)
	})
}

func TestMetisWriter(t *testing.T) {
	dir := t.TempDir()

	t.Run("pads isolated nodes", func(t *testing.T) {
		path := filepath.Join(dir, "isolated.graph")
		w, err := CreateMetis(path, domain.Header{N: 5, M: 4}, Options{})
		require.NoError(t, err)

		require.NoError(t, w.WritePart([]domain.Edge{edge(1, 3)}, 0, 2))
		assert.Equal(t, domain.ID(2), w.Next())
		require.NoError(t, w.WritePart([]domain.Edge{edge(3, 1)}, 2, 4))
		require.NoError(t, w.Close(5))
		assert.NoError(t, w.Close(5), "second close is a no-op")

		assert.Equal(t, "5 2\n\n4 \n\n2 \n\n", readOutput(t, path))
	})

	t.Run("gap between parts", func(t *testing.T) {
		path := filepath.Join(dir, "gap.graph")
		w, err := CreateMetis(path, domain.Header{N: 6, M: 2}, Options{})
		require.NoError(t, err)

		require.NoError(t, w.WritePart([]domain.Edge{edge(0, 5)}, 0, 1))
		require.NoError(t, w.WritePart([]domain.Edge{edge(5, 0)}, 3, 6))
		require.NoError(t, w.Close(6))

		assert.Equal(t, "6 1\n6 \n\n\n\n\n1 \n", readOutput(t, path))
	})

	t.Run("weights and format code", func(t *testing.T) {
		path := filepath.Join(dir, "weighted.graph")
		w, err := CreateMetis(path, domain.Header{N: 2, M: 2, HasNodeWeights: true, HasEdgeWeights: true}, Options{})
		require.NoError(t, err)

		require.NoError(t, w.WriteNode(0, 4))
		require.NoError(t, w.WriteEdge(weighted(0, 1, 9)))
		require.NoError(t, w.WriteNode(1, 2))
		require.NoError(t, w.WriteEdge(weighted(1, 0, 9)))
		require.NoError(t, w.Close(2))

		assert.Equal(t, "2 1 11\n4 2 9 \n2 1 9 \n", readOutput(t, path))
		assert.Equal(t, uint64(2), w.Edges())
	})

	t.Run("rejects overlap unsorted and out of range", func(t *testing.T) {
		path := filepath.Join(dir, "bad.graph")
		w, err := CreateMetis(path, domain.Header{N: 3, M: 4}, Options{})
		require.NoError(t, err)

		require.NoError(t, w.WritePart([]domain.Edge{edge(0, 1), edge(1, 0)}, 0, 2))
		assert.ErrorIs(t, w.WritePart(nil, 1, 3), domain.ErrEncodingRange, "overlap")
		assert.ErrorIs(t, w.WritePart([]domain.Edge{edge(0, 2)}, 2, 3), domain.ErrEncodingRange, "source outside part")
		assert.ErrorIs(t, w.WriteEdge(edge(2, 3)), domain.ErrEncodingRange, "target beyond n")
		assert.ErrorIs(t, w.WriteEdge(edge(1, 2)), domain.ErrEncodingRange, "unsorted source")
		assert.ErrorIs(t, w.WritePart(nil, 2, 4), domain.ErrEncodingRange, "beyond n")

		require.NoError(t, w.Abort())
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "aborted output is removed")
	})
}

func TestBinaryWriter(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes header offsets and targets", func(t *testing.T) {
		path := filepath.Join(dir, "g.bgf")
		w, err := CreateBinary(path, domain.Header{N: 3, M: 4}, Options{})
		require.NoError(t, err)

		require.NoError(t, w.WriteOffsets(0, 1, 3))
		require.NoError(t, w.WriteOffsets(4))
		require.NoError(t, w.WriteTargets(1, 0, 2))
		require.NoError(t, w.WriteTargets(1))
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		words := make([]uint64, len(data)/8)
		require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, words))
		assert.Equal(t, []uint64{3, 3, 4, 56, 64, 80, 88, 1, 0, 2, 1}, words)

		g, err := ReadBinaryGraph(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.ID{0, 2}, g.Neighbors(1))
		assert.Equal(t, uint64(1), g.Degree(0))
		assert.Equal(t, uint64(1), g.Degree(2))

		h, err := ReadBinaryHeaderFile(path)
		require.NoError(t, err)
		assert.Equal(t, BinaryHeader{Version: 3, N: 3, M: 4}, h)
	})

	t.Run("rejects incomplete output", func(t *testing.T) {
		path := filepath.Join(dir, "short.bgf")
		w, err := CreateBinary(path, domain.Header{N: 2, M: 2}, Options{})
		require.NoError(t, err)

		assert.ErrorIs(t, w.WriteTargets(1), domain.ErrEncodingRange, "targets before offsets")
		require.NoError(t, w.WriteOffsets(0, 1, 2))
		assert.ErrorIs(t, w.WriteOffsets(2), domain.ErrEncodingRange, "too many offsets")
		require.NoError(t, w.WriteTargets(1))
		assert.ErrorIs(t, w.WriteTargets(2), domain.ErrEncodingRange, "target beyond n")

		assert.ErrorIs(t, w.Close(), domain.ErrEncodingRange)
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("decreasing offsets", func(t *testing.T) {
		w, err := CreateBinary(filepath.Join(dir, "dec.bgf"), domain.Header{N: 2, M: 2}, Options{})
		require.NoError(t, err)
		require.NoError(t, w.WriteOffsets(0, 2))
		assert.ErrorIs(t, w.WriteOffsets(1), domain.ErrEncodingRange)
		require.NoError(t, w.Abort())
	})
}

func TestReadBinaryGraphRejectsCorruptFiles(t *testing.T) {
	encode := func(words ...uint64) string {
		var b bytes.Buffer
		require.NoError(t, binary.Write(&b, binary.LittleEndian, words))
		return b.String()
	}

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"truncated header", "abc", domain.ErrEndOfInput},
		{"wrong version", encode(2, 0, 0, 32), domain.ErrMalformedHeader},
		{"size mismatch", encode(3, 1, 1, 40, 48), domain.ErrMalformedHeader},
		{"offset not in target array", encode(3, 1, 1, 8, 48, 0), domain.ErrUnexpectedToken},
		{"target beyond n", encode(3, 1, 1, 40, 48, 5), domain.ErrUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBinaryGraph(writeInput(t, "g.bgf", tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestXtrapulpWriter(t *testing.T) {
	dir := t.TempDir()
	h := domain.Header{N: 2, M: 2}

	t.Run("32 bit pairs", func(t *testing.T) {
		path := filepath.Join(dir, "g32.xtrapulp")
		w, err := CreateXtrapulp(path, h, 32, Options{})
		require.NoError(t, err)
		require.NoError(t, w.WriteEdge(edge(0, 1)))
		require.NoError(t, w.WriteEdge(edge(1, 0)))
		require.NoError(t, w.Close())

		assert.Equal(t, string([]byte{0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}), readOutput(t, path))
		assert.Equal(t, uint64(2), w.Pairs())
	})

	t.Run("64 bit pairs", func(t *testing.T) {
		path := filepath.Join(dir, "g64.xtrapulp")
		w, err := CreateXtrapulp(path, h, 64, Options{})
		require.NoError(t, err)
		require.NoError(t, w.WriteEdge(edge(1<<40, 1)))
		require.NoError(t, w.Close())

		data := []byte(readOutput(t, path))
		require.Len(t, data, 16)
		assert.Equal(t, uint64(1<<40), binary.LittleEndian.Uint64(data))
	})

	t.Run("32 bit overflow", func(t *testing.T) {
		w, err := CreateXtrapulp(filepath.Join(dir, "over.xtrapulp"), h, 32, Options{})
		require.NoError(t, err)
		err = w.WriteEdge(edge(1<<32, 0))
		assert.ErrorIs(t, err, domain.ErrEncodingRange)
		assert.Equal(t, domain.OutcomeEncodingRange, domain.Classify(err))
		require.NoError(t, w.Abort())
	})

	t.Run("unsupported width", func(t *testing.T) {
		_, err := CreateXtrapulp(filepath.Join(dir, "w.xtrapulp"), h, 16, Options{})
		assert.ErrorIs(t, err, domain.ErrUsage)
	})
}
