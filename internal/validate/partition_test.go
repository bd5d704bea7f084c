package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphtools/internal/config"
	"graphtools/internal/domain"
)

func TestCheckPartition(t *testing.T) {
	graph := writeFile(t, "valid.graph", validGraph)

	t.Run("balanced bisection", func(t *testing.T) {
		partition := writeFile(t, "valid.part", "0\n0\n1\n1\n")

		report, err := strict(t).CheckPartition(context.Background(), graph, partition)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), report.Blocks)
		assert.Equal(t, []uint64{2, 2}, report.BlockSizes)
		assert.Equal(t, uint64(3), report.Cut)
		assert.InDelta(t, 1.0, report.Imbalance, 1e-9)
		assert.Empty(t, report.Diagnostics)
	})

	t.Run("imbalanced", func(t *testing.T) {
		partition := writeFile(t, "skewed.part", "0\n0\n0\n1\n")

		report, err := strict(t).CheckPartition(context.Background(), graph, partition)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), report.Cut)
		assert.InDelta(t, 1.5, report.Imbalance, 1e-9)
	})

	t.Run("short assignment is out of bounds", func(t *testing.T) {
		partition := writeFile(t, "short.part", "0\n1\n")

		report, err := strict(t).CheckPartition(context.Background(), graph, partition)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStructural)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, domain.KindAssignmentOutOfBounds, report.Diagnostics[0].Kind)
		assert.Zero(t, report.Cut)
	})

	t.Run("short assignment fails in permissive mode too", func(t *testing.T) {
		partition := writeFile(t, "short.part", "0\n1\n")

		_, err := permissive(t).CheckPartition(context.Background(), graph, partition)
		assert.ErrorIs(t, err, domain.ErrStructural)
	})

	t.Run("block id beyond n is out of bounds", func(t *testing.T) {
		for _, content := range []string{
			"0\n0\n1\n4\n",
			"0\n0\n1\n1000000000000000\n",
			"0\n0\n1\n18446744073709551615\n",
		} {
			partition := writeFile(t, "huge.part", content)

			report, err := permissive(t).CheckPartition(context.Background(), graph, partition)
			require.Error(t, err, "partition %q", content)
			assert.ErrorIs(t, err, domain.ErrStructural)
			require.Len(t, report.Diagnostics, 1)
			assert.Equal(t, domain.KindAssignmentOutOfBounds, report.Diagnostics[0].Kind)
			assert.Equal(t, domain.ID(3), report.Diagnostics[0].Node)
			assert.Empty(t, report.BlockSizes)
		}
	})

	t.Run("entries past n do not count as blocks", func(t *testing.T) {
		partition := writeFile(t, "tail.part", "0\n0\n1\n1\n18446744073709551615\n")

		report, err := strict(t).CheckPartition(context.Background(), graph, partition)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), report.Blocks)
		assert.Equal(t, []uint64{2, 2}, report.BlockSizes)
	})

	t.Run("long assignment is a warning", func(t *testing.T) {
		partition := writeFile(t, "long.part", "0\n0\n1\n1\n1\n")

		report, err := strict(t).CheckPartition(context.Background(), graph, partition)
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, domain.KindAssignmentSizeMismatch, report.Diagnostics[0].Kind)
		assert.Equal(t, domain.SeverityWarning, report.Diagnostics[0].Severity)
		assert.Equal(t, uint64(3), report.Cut)
	})
}

func TestCheckPartitionEmptyGraph(t *testing.T) {
	graph := writeFile(t, "empty.graph", "0 0\n")
	partition := writeFile(t, "empty.part", "")

	report, err := strict(t).CheckPartition(context.Background(), graph, partition)
	require.NoError(t, err)
	assert.Zero(t, report.Cut)
	assert.Equal(t, 1.0, report.Imbalance)
}

func TestCheckPartitionNeighborOutOfRange(t *testing.T) {
	graph := writeFile(t, "bad.graph", "2 1\n3\n1\n")
	partition := writeFile(t, "bad.part", "0\n1\n")

	_, err := permissive(t).CheckPartition(context.Background(), graph, partition)
	assert.ErrorIs(t, err, domain.ErrStructural)
}

func TestCheckClustering(t *testing.T) {
	graph := writeFile(t, "valid.graph", validGraph)

	t.Run("statistics", func(t *testing.T) {
		clustering := writeFile(t, "valid.clustering", "0\n0\n2\n2\n")

		report, err := strict(t).CheckClustering(context.Background(), graph, clustering)
		require.NoError(t, err)
		assert.Equal(t, domain.Weight(3), report.Cut)
		assert.Equal(t, uint64(2), report.Clusters)
		assert.Equal(t, domain.Weight(2), report.MaxClusterWeight)
		assert.Equal(t, domain.Weight(4), report.TotalNodeWeight)
	})

	t.Run("weighted", func(t *testing.T) {
		weighted := writeFile(t, "weighted.graph", "3 2 11\n5 2 7\n1 1 7 3 2\n2 2 2\n")
		clustering := writeFile(t, "weighted.clustering", "0\n0\n1\n")

		report, err := strict(t).CheckClustering(context.Background(), weighted, clustering)
		require.NoError(t, err)
		assert.Equal(t, domain.Weight(2), report.Cut)
		assert.Equal(t, uint64(2), report.Clusters)
		assert.Equal(t, domain.Weight(6), report.MaxClusterWeight)
		assert.Equal(t, domain.Weight(8), report.TotalNodeWeight)
	})

	t.Run("cluster id out of bounds", func(t *testing.T) {
		clustering := writeFile(t, "bad.clustering", "0\n0\n4\n1\n")

		report, err := strict(t).CheckClustering(context.Background(), graph, clustering)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStructural)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, domain.KindAssignmentOutOfBounds, report.Diagnostics[0].Kind)
		assert.Equal(t, domain.ID(2), report.Diagnostics[0].Node)
	})

	t.Run("node weight total overflows", func(t *testing.T) {
		weighted := writeFile(t, "heavy.graph", "2 1 10\n2147483647 2\n1 1\n")
		clustering := writeFile(t, "heavy.clustering", "0\n0\n")
		v := newValidator(t, Options{Mode: config.CheckPermissive, Limits: domain.Limits{IDBits: 64, WeightBits: 32}})

		report, err := v.CheckClustering(context.Background(), weighted, clustering)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStructural)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, domain.KindWeightOverflow, report.Diagnostics[0].Kind)
		assert.Zero(t, report.TotalNodeWeight)
	})
}
