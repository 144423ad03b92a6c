// Package similarity provides the build-once approximate nearest-neighbor
// index behind "similar items": an HNSW graph over unit-normalised feature
// vectors searched by angular distance.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/store"

	"github.com/liliang-cn/sqvect/v2/pkg/index"
)

const module = "SIMILARITY"

const (
	DefaultLinks          = 16
	DefaultEfConstruction = 200
	DefaultEfSearch       = 64
)

// ErrEmptyIndex is returned by Build when no usable vector was supplied.
var ErrEmptyIndex = errors.New("similarity: no usable feature vectors")

// Config tunes the graph. Searches widen to at least k+1 candidates.
type Config struct {
	Links          int // Max links per node; more links = better recall, more memory
	EfConstruction int // Candidate list size while inserting
	EfSearch       int // Candidate list size while querying
}

func (c Config) withDefaults() Config {
	if c.Links <= 0 {
		c.Links = DefaultLinks
	}
	if c.EfConstruction <= 0 {
		c.EfConstruction = DefaultEfConstruction
	}
	if c.EfSearch <= 0 {
		c.EfSearch = DefaultEfSearch
	}
	return c
}

// Neighbor is one query result. Score is round(1 - distance, 3).
type Neighbor struct {
	ProductID int64
	Distance  float64
	Score     float64
}

// Index is immutable once built and safe for concurrent readers.
type Index struct {
	config    Config
	dimension int
	builtAt   time.Time

	// ordinal -> data; ordinals are dense 0..n-1 and key the graph nodes
	ids      []int64
	vectors  [][]float32
	products []store.Product
	ordinals map[int64]int

	graph *index.HNSW
}

// Build constructs the graph from a catalog snapshot. Malformed rows are
// logged and skipped; only an empty usable set fails the build.
func Build(rows []store.FeatureRow, cfg Config, log logger.ILogger) (*Index, error) {
	cfg = cfg.withDefaults()

	idx := &Index{
		config:   cfg,
		ordinals: make(map[int64]int, len(rows)),
		graph:    index.NewHNSW(cfg.Links, cfg.EfConstruction, angular),
	}

	skipped := 0
	for _, row := range rows {
		vector, err := idx.accept(row)
		if err == nil {
			err = idx.graph.Insert(nodeKey(len(idx.ids)), vector)
		}
		if err != nil {
			skipped++
			log.Warn(module, "Skipping product during index build", map[string]interface{}{
				"product_id": row.ProductID,
				"error":      err.Error(),
			})
			continue
		}
		idx.ordinals[row.ProductID] = len(idx.ids)
		idx.ids = append(idx.ids, row.ProductID)
		idx.vectors = append(idx.vectors, vector)
		idx.products = append(idx.products, store.Product{
			ID:          row.ProductID,
			DisplayName: row.DisplayName,
			ImageURL:    row.ImageURL,
		})
	}

	if len(idx.ids) == 0 {
		return nil, ErrEmptyIndex
	}
	idx.builtAt = time.Now()

	log.Info(module, "Similarity index built", map[string]interface{}{
		"items":     len(idx.ids),
		"skipped":   skipped,
		"links":     cfg.Links,
		"dimension": idx.dimension,
	})
	return idx, nil
}

// accept validates a row and returns its unit vector.
func (idx *Index) accept(row store.FeatureRow) ([]float32, error) {
	if _, dup := idx.ordinals[row.ProductID]; dup {
		return nil, fmt.Errorf("duplicate product id")
	}
	if len(row.Vector) == 0 {
		return nil, fmt.Errorf("empty feature vector")
	}
	if idx.dimension != 0 && len(row.Vector) != idx.dimension {
		return nil, fmt.Errorf("dimension mismatch: expected %d, got %d", idx.dimension, len(row.Vector))
	}

	var norm float64
	for _, x := range row.Vector {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite component")
		}
		norm += f * f
	}
	if norm == 0 {
		return nil, fmt.Errorf("zero vector has no direction")
	}

	norm = math.Sqrt(norm)
	unit := make([]float32, len(row.Vector))
	for i, x := range row.Vector {
		unit[i] = float32(float64(x) / norm)
	}
	if idx.dimension == 0 {
		idx.dimension = len(row.Vector)
	}
	return unit, nil
}

// Query returns up to k neighbors of productID, closest first, never
// including productID itself. Unindexed ids yield an empty result.
func (idx *Index) Query(productID int64, k int) []Neighbor {
	ord, ok := idx.ordinals[productID]
	if !ok || k <= 0 {
		return []Neighbor{}
	}
	query := idx.vectors[ord]

	ef := idx.config.EfSearch
	if ef < k+1 {
		ef = k + 1
	}
	keys, _ := idx.graph.Search(query, k+1, ef)

	neighbors := make([]Neighbor, 0, len(keys))
	for _, key := range keys {
		it, err := strconv.Atoi(key)
		if err != nil || it == ord || it < 0 || it >= len(idx.ids) {
			continue
		}
		d := angularDistance(query, idx.vectors[it])
		neighbors = append(neighbors, Neighbor{
			ProductID: idx.ids[it],
			Distance:  d,
			Score:     math.Round((1-d)*1000) / 1000,
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].ProductID < neighbors[j].ProductID
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// Product returns the display data captured for productID at build time.
func (idx *Index) Product(productID int64) (store.Product, bool) {
	ord, ok := idx.ordinals[productID]
	if !ok {
		return store.Product{}, false
	}
	return idx.products[ord].Clone(), true
}

// Contains reports whether productID is indexed.
func (idx *Index) Contains(productID int64) bool {
	_, ok := idx.ordinals[productID]
	return ok
}

// Ordinal exposes the dense position assigned to productID.
func (idx *Index) Ordinal(productID int64) (int, bool) {
	ord, ok := idx.ordinals[productID]
	return ord, ok
}

func (idx *Index) Len() int { return len(idx.ids) }
func (idx *Index) Dimension() int { return idx.dimension }
func (idx *Index) Links() int { return idx.config.Links }
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

func nodeKey(ordinal int) string {
	return strconv.Itoa(ordinal)
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// angularDistance is sqrt(2 - 2cos) for unit vectors, in [0, 2].
func angularDistance(a, b []float32) float64 {
	cos := float64(dot(a, b))
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return math.Sqrt(2 - 2*cos)
}

// angular is the graph's distance function.
func angular(a, b []float32) float32 {
	return float32(angularDistance(a, b))
}
