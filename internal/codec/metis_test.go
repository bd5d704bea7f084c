package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphtools/internal/domain"
	"graphtools/internal/scanner"
)

const validGraph = "4 4\n2 3\n1 3 4\n1 2\n2\n"

func TestReadMetisHeader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Header
		wantErr error
	}{
		{
			name:  "unweighted without format",
			input: "4 4\n",
			want:  domain.Header{N: 4, M: 8},
		},
		{
			name:  "comments before header",
			input: "% generated\n  % twice\n3 2 0\n",
			want:  domain.Header{N: 3, M: 4},
		},
		{
			name:  "edge weights",
			input: "3 2 1\n",
			want:  domain.Header{N: 3, M: 4, HasEdgeWeights: true},
		},
		{
			name:  "node and edge weights",
			input: "3 2 11\r\n",
			want:  domain.Header{N: 3, M: 4, HasNodeWeights: true, HasEdgeWeights: true},
		},
		{
			name:    "unsupported format code",
			input:   "3 2 12\n",
			wantErr: domain.ErrMalformedHeader,
		},
		{
			name:    "non numeric",
			input:   "three 2\n",
			wantErr: domain.ErrMalformedHeader,
		},
		{
			name:    "missing edge count",
			input:   "3\n",
			wantErr: domain.ErrMalformedHeader,
		},
		{
			name:    "trailing garbage",
			input:   "3 2 0 x\n",
			wantErr: domain.ErrMalformedHeader,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: domain.ErrMalformedHeader,
		},
		{
			name:    "node count overflows",
			input:   "18446744073709551616 1\n",
			wantErr: domain.ErrMalformedHeader,
		},
		{
			name:    "edge count cannot be doubled",
			input:   "3 9223372036854775808\n",
			wantErr: domain.ErrMalformedHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadMetisHeader(scanner.New([]byte(tt.input)))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.OutcomeMalformedInput, domain.Classify(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h)
		})
	}
}

func TestDecodeMetis(t *testing.T) {
	t.Run("valid unweighted graph", func(t *testing.T) {
		path := writeInput(t, "g.graph", validGraph)
		var c collector
		require.NoError(t, DecodeMetis(path, &c, Options{}))

		assert.Equal(t, domain.Header{N: 4, M: 8}, c.header(t))
		assert.Equal(t, []domain.Weight{1, 1, 1, 1}, c.nodes)
		assert.Equal(t, []domain.Edge{
			edge(0, 1), edge(0, 2),
			edge(1, 0), edge(1, 2), edge(1, 3),
			edge(2, 0), edge(2, 1),
			edge(3, 1),
		}, c.edges)
	})

	t.Run("weights comments and isolated nodes", func(t *testing.T) {
		input := "% weighted\n3 1 11\n5 2 7\n% between nodes\n6 1 7 \n0\n\n"
		path := writeInput(t, "w.graph", input)
		var c collector
		require.NoError(t, DecodeMetis(path, &c, Options{}))

		assert.Equal(t, []domain.Weight{5, 6, 0}, c.nodes)
		assert.Equal(t, []domain.Edge{weighted(0, 1, 7), weighted(1, 0, 7)}, c.edges)
	})

	t.Run("last line without newline", func(t *testing.T) {
		path := writeInput(t, "g.graph", "2 1\n2\n1")
		var c collector
		require.NoError(t, DecodeMetis(path, &c, Options{}))
		assert.Len(t, c.edges, 2)
	})

	t.Run("negative weights are decoded", func(t *testing.T) {
		path := writeInput(t, "g.graph", "2 1 1\n2 -3\n1 -3\n")
		var c collector
		require.NoError(t, DecodeMetis(path, &c, Options{}))
		assert.Equal(t, domain.Weight(-3), c.edges[0].Weight)
	})

	t.Run("missing node lines", func(t *testing.T) {
		path := writeInput(t, "g.graph", "3 1\n2\n1\n")
		err := DecodeMetis(path, &collector{}, Options{})
		assert.ErrorIs(t, err, domain.ErrEndOfInput)

		var pe *domain.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, path, pe.Path)
	})

	t.Run("zero neighbor id", func(t *testing.T) {
		path := writeInput(t, "g.graph", "2 1\n0\n1\n")
		err := DecodeMetis(path, &collector{}, Options{})
		assert.ErrorIs(t, err, domain.ErrUnexpectedToken)
	})

	t.Run("garbage inside a line", func(t *testing.T) {
		path := writeInput(t, "g.graph", "2 1\n2 x\n1\n")
		err := DecodeMetis(path, &collector{}, Options{})
		assert.ErrorIs(t, err, domain.ErrUnexpectedToken)
	})

	t.Run("content after the last node line", func(t *testing.T) {
		path := writeInput(t, "g.graph", "2 1\n2\n1\n\n2\n")
		err := DecodeMetis(path, &collector{}, Options{})
		assert.ErrorIs(t, err, domain.ErrUnexpectedToken)
	})

	t.Run("trailing blank lines and comments are fine", func(t *testing.T) {
		path := writeInput(t, "g.graph", "2 1\n2\n1\n\n  \n% done\n")
		assert.NoError(t, DecodeMetis(path, &collector{}, Options{}))
	})

	t.Run("missing file", func(t *testing.T) {
		err := DecodeMetis(writeInput(t, "g.graph", "")+".missing", &collector{}, Options{})
		assert.ErrorIs(t, err, domain.ErrInputNotFound)
	})

	t.Run("visitor error stops decoding", func(t *testing.T) {
		stop := errors.New("stop")
		path := writeInput(t, "g.graph", validGraph)
		calls := 0
		err := DecodeMetis(path, VisitorFuncs{OnEdge: func(domain.Edge) error {
			calls++
			return stop
		}}, Options{})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("reports progress", func(t *testing.T) {
		path := writeInput(t, "g.graph", validGraph)
		var reports [][2]uint64
		opts := Options{Every: 2, Progress: func(current, total uint64) {
			reports = append(reports, [2]uint64{current, total})
		}}
		require.NoError(t, DecodeMetis(path, &collector{}, opts))

		require.Len(t, reports, 5, "four ticks for eight edges and one completion")
		assert.Equal(t, [2]uint64{uint64(len(validGraph)), uint64(len(validGraph))}, reports[4])
	})
}

func TestMetisDegrees(t *testing.T) {
	path := writeInput(t, "g.graph", "4 3 11\n1 2 5\n2 1 5 3 1\n3 2 1\n4\n")
	var degrees []uint64
	h, err := MetisDegrees(path, Options{}, func(u domain.ID, degree uint64) error {
		assert.Equal(t, uint64(len(degrees)), u)
		degrees = append(degrees, degree)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), h.M)
	assert.Equal(t, []uint64{1, 2, 1, 0}, degrees)
}

func TestMetisEdges(t *testing.T) {
	path := writeInput(t, "g.graph", validGraph)

	t.Run("yields every edge", func(t *testing.T) {
		var edges []domain.Edge
		for e, err := range MetisEdges(path, Options{}) {
			require.NoError(t, err)
			edges = append(edges, e)
		}
		assert.Len(t, edges, 8)
	})

	t.Run("restartable and stops on break", func(t *testing.T) {
		seq := MetisEdges(path, Options{})
		for range 2 {
			count := 0
			for _, err := range seq {
				require.NoError(t, err)
				count++
				if count == 3 {
					break
				}
			}
			assert.Equal(t, 3, count)
		}
	})

	t.Run("yields the decode error last", func(t *testing.T) {
		bad := writeInput(t, "bad.graph", "2 1\n2\n")
		var last error
		count := 0
		for _, err := range MetisEdges(bad, Options{}) {
			count++
			last = err
		}
		assert.Equal(t, 2, count)
		assert.ErrorIs(t, last, domain.ErrEndOfInput)
	})
}

func TestReadMetisHeaderFile(t *testing.T) {
	h, err := ReadMetisHeaderFile(writeInput(t, "g.graph", validGraph))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), h.N)
	assert.Equal(t, uint64(4), h.UndirectedEdges())
}
