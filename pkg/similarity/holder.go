package similarity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/store"
)

// SnapshotSource provides the full feature-vector snapshot for a build.
type SnapshotSource interface {
	FeatureSnapshot(ctx context.Context) ([]store.FeatureRow, error)
}

// Status describes the index currently served.
type Status struct {
	Ready     bool      `json:"ready"`
	Items     int       `json:"items"`
	Links     int       `json:"links"`
	Dimension int       `json:"dimension"`
	BuiltAt   time.Time `json:"built_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Holder serves the current index to readers and swaps in full rebuilds.
// There is no incremental update: every rebuild starts from a fresh snapshot.
type Holder struct {
	source SnapshotSource
	cfg    Config
	logger logger.ILogger

	current atomic.Pointer[Index]

	rebuildMu sync.Mutex
	lastErr   atomic.Value // string
}

func NewHolder(source SnapshotSource, cfg Config, log logger.ILogger) *Holder {
	return &Holder{source: source, cfg: cfg, logger: log}
}

// Current returns the served index; ok is false while nothing was ever built.
func (h *Holder) Current() (*Index, bool) {
	idx := h.current.Load()
	return idx, idx != nil
}

// Rebuild loads a snapshot and swaps the new index in. On failure the
// previous index, if any, stays in service.
func (h *Holder) Rebuild(ctx context.Context) error {
	h.rebuildMu.Lock()
	defer h.rebuildMu.Unlock()

	start := time.Now()
	rows, err := h.source.FeatureSnapshot(ctx)
	if err != nil {
		h.fail("Feature snapshot failed", err)
		return err
	}

	idx, err := Build(rows, h.cfg, h.logger)
	if err != nil {
		h.fail("Index build failed", err)
		return err
	}

	h.current.Store(idx)
	h.lastErr.Store("")
	h.logger.Info(module, "Similarity index swapped in", map[string]interface{}{
		"items":       idx.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (h *Holder) fail(message string, err error) {
	h.lastErr.Store(err.Error())
	_, serving := h.Current()
	h.logger.Error(module, message, map[string]interface{}{
		"error":           err.Error(),
		"keeps_old_index": serving,
	})
}

func (h *Holder) Status() Status {
	s := Status{}
	if msg, ok := h.lastErr.Load().(string); ok {
		s.LastError = msg
	}
	if idx, ok := h.Current(); ok {
		s.Ready = true
		s.Items = idx.Len()
		s.Links = idx.Links()
		s.Dimension = idx.Dimension()
		s.BuiltAt = idx.BuiltAt()
	}
	return s
}
