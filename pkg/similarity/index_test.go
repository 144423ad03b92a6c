package similarity

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arcRows places products on the unit circle, 5 degrees apart.
func arcRows(n int) []store.FeatureRow {
	rows := make([]store.FeatureRow, n)
	for i := 0; i < n; i++ {
		theta := float64(i) * 5 * math.Pi / 180
		rows[i] = store.FeatureRow{
			ProductID:   int64(100 + i),
			DisplayName: "product",
			Vector:      []float32{float32(math.Cos(theta)), float32(math.Sin(theta))},
		}
	}
	return rows
}

func randomRows(n, dim int, seed int64) []store.FeatureRow {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]store.FeatureRow, n)
	for i := range rows {
		v := make([]float32, dim)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		rows[i] = store.FeatureRow{ProductID: int64(i + 1), Vector: v}
	}
	return rows
}

func TestQueryOrdersClosestFirst(t *testing.T) {
	idx, err := Build(arcRows(20), Config{}, logger.NewNopLogger())
	require.NoError(t, err)

	got := idx.Query(100, 3)

	require.Len(t, got, 3)
	assert.Equal(t, int64(101), got[0].ProductID)
	assert.Equal(t, int64(102), got[1].ProductID)
	assert.Equal(t, int64(103), got[2].ProductID)
	// 5 degrees apart: 1 - sqrt(2 - 2cos(5deg)) = 0.9128...
	assert.Equal(t, 0.913, got[0].Score)
	assert.Greater(t, got[0].Score, got[2].Score)
}

func TestQueryInvariants(t *testing.T) {
	rows := randomRows(300, 8, 42)
	idx, err := Build(rows, Config{EfSearch: 32}, logger.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, 300, idx.Len())

	for _, k := range []int{1, 5, 11} {
		for _, row := range rows {
			got := idx.Query(row.ProductID, k)
			assert.LessOrEqual(t, len(got), k)
			for i, n := range got {
				assert.NotEqual(t, row.ProductID, n.ProductID)
				if i > 0 {
					assert.LessOrEqual(t, got[i-1].Distance, n.Distance)
				}
			}
		}
	}
}

func TestQueryUnindexedIsEmpty(t *testing.T) {
	idx, err := Build(arcRows(5), Config{}, logger.NewNopLogger())
	require.NoError(t, err)

	assert.Empty(t, idx.Query(999, 5))
	assert.Empty(t, idx.Query(100, 0))
	assert.False(t, idx.Contains(999))
}

func TestBuildSkipsMalformedRows(t *testing.T) {
	rows := arcRows(4)
	rows = append(rows,
		store.FeatureRow{ProductID: 1, Vector: nil},
		store.FeatureRow{ProductID: 2, Vector: []float32{1, 2, 3}},
		store.FeatureRow{ProductID: 3, Vector: []float32{0, 0}},
		store.FeatureRow{ProductID: 4, Vector: []float32{float32(math.NaN()), 1}},
		store.FeatureRow{ProductID: 100, Vector: []float32{1, 0}},
	)

	idx, err := Build(rows, Config{}, logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, 2, idx.Dimension())
	for _, id := range []int64{1, 2, 3, 4} {
		assert.False(t, idx.Contains(id))
	}

	ords := map[int]bool{}
	for _, row := range arcRows(4) {
		ord, ok := idx.Ordinal(row.ProductID)
		require.True(t, ok)
		ords[ord] = true
	}
	assert.Len(t, ords, 4, "ordinals form a bijection")
}

func TestBuildFailsOnEmptySnapshot(t *testing.T) {
	_, err := Build(nil, Config{}, logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrEmptyIndex)

	_, err = Build([]store.FeatureRow{{ProductID: 1}}, Config{}, logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func bruteForce(rows []store.FeatureRow, idx *Index, productID int64, k int) []int64 {
	ord, _ := idx.Ordinal(productID)
	type scored struct {
		id int64
		d  float64
	}
	var all []scored
	for _, row := range rows {
		if row.ProductID == productID {
			continue
		}
		other, _ := idx.Ordinal(row.ProductID)
		all = append(all, scored{row.ProductID, angularDistance(idx.vectors[ord], idx.vectors[other])})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].d != all[j].d {
			return all[i].d < all[j].d
		}
		return all[i].id < all[j].id
	})
	ids := make([]int64, 0, k)
	for _, s := range all[:k] {
		ids = append(ids, s.id)
	}
	return ids
}

func TestQueryMatchesExactSearchWhenEfCoversCatalog(t *testing.T) {
	rows := randomRows(200, 6, 3)
	idx, err := Build(rows, Config{EfSearch: 256}, logger.NewNopLogger())
	require.NoError(t, err)

	for _, id := range []int64{1, 50, 120, 200} {
		got := idx.Query(id, 10)
		ids := make([]int64, len(got))
		for i, n := range got {
			ids[i] = n.ProductID
		}
		assert.Equal(t, bruteForce(rows, idx, id, 10), ids, "product %d", id)
	}
}

func TestStatusReportsLinks(t *testing.T) {
	h := NewHolder(&snapshotStub{rows: arcRows(6)}, Config{Links: 8}, logger.NewNopLogger())
	require.NoError(t, h.Rebuild(context.Background()))

	status := h.Status()
	assert.True(t, status.Ready)
	assert.Equal(t, 8, status.Links)
	assert.Equal(t, 2, status.Dimension)
}

type snapshotStub struct {
	rows []store.FeatureRow
	err  error
}

func (s *snapshotStub) FeatureSnapshot(ctx context.Context) ([]store.FeatureRow, error) {
	return s.rows, s.err
}

func TestHolderKeepsServingOnFailedRebuild(t *testing.T) {
	src := &snapshotStub{rows: arcRows(10)}
	h := NewHolder(src, Config{Links: 4}, logger.NewNopLogger())

	_, ok := h.Current()
	assert.False(t, ok)
	assert.False(t, h.Status().Ready)

	require.NoError(t, h.Rebuild(context.Background()))
	first, ok := h.Current()
	require.True(t, ok)

	src.err = errors.New("connection refused")
	assert.Error(t, h.Rebuild(context.Background()))

	still, ok := h.Current()
	require.True(t, ok)
	assert.Same(t, first, still)

	status := h.Status()
	assert.True(t, status.Ready)
	assert.Equal(t, 10, status.Items)
	assert.Equal(t, "connection refused", status.LastError)
}
