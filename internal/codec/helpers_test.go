package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"graphtools/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// writeInput writes content to a file in a fresh temp dir and returns its path
func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// readOutput returns the contents of path as a string
func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// collector records everything a decoder emits
type collector struct {
	headers []domain.Header
	nodes   []domain.Weight
	edges   []domain.Edge
}

func (c *collector) Header(h domain.Header) error {
	c.headers = append(c.headers, h)
	return nil
}

func (c *collector) Node(u domain.ID, weight domain.Weight) error {
	if uint64(len(c.nodes)) != u {
		panic("nodes out of order")
	}
	c.nodes = append(c.nodes, weight)
	return nil
}

func (c *collector) Edge(e domain.Edge) error {
	c.edges = append(c.edges, e)
	return nil
}

func (c *collector) header(t *testing.T) domain.Header {
	t.Helper()
	require.Len(t, c.headers, 1, "header must be reported exactly once")
	return c.headers[0]
}

func edge(from, to domain.ID) domain.Edge {
	return domain.NewEdge(from, to)
}

func weighted(from, to domain.ID, w domain.Weight) domain.Edge {
	return domain.Edge{From: from, To: to, Weight: w}
}
