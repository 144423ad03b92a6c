// Package search runs the adaptive catalog search: query, and while the
// result count is below the minimum, broaden the filters and try again.
package search

import (
	"context"
	"fmt"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/recommend/filter"
	"fashion-recommender-be/pkg/store"
)

const module = "SEARCH"

// Config holds the relaxation bounds
type Config struct {
	MinResults  int // Stop as soon as a query returns at least this many rows
	MaxAttempts int // Expansions allowed; store queries never exceed MaxAttempts+1
	RowCap      int // Row limit per store query
}

// DefaultConfig returns the default search configuration
func DefaultConfig() Config {
	return Config{
		MinResults:  5,
		MaxAttempts: 3,
		RowCap:      10,
	}
}

// FilterResolver is the filter side of the loop.
type FilterResolver interface {
	ValidateAndCorrect(ctx context.Context, proposed store.FilterSet) store.FilterSet
	Expand(ctx context.Context, current store.FilterSet, resultCount int) (*filter.Expansion, bool)
}

// ProductQuery runs one parameterized catalog query.
type ProductQuery interface {
	SearchProducts(ctx context.Context, filters store.FilterSet, limit int) ([]store.Product, error)
}

type NoticeKind int

const (
	NoticeShortfall       NoticeKind = iota // a query came back below the minimum
	NoticeExpanded                          // filters were broadened for another attempt
	NoticeExpansionFailed                   // no broader filter set could be produced
)

// Notice reports progress to the caller while the loop runs.
type Notice struct {
	Kind    NoticeKind
	Attempt int
	Count   int
	Message string
	Filters store.FilterSet
}

type Notifier func(Notice)

// Outcome is the best result the loop reached.
type Outcome struct {
	Products  []store.Product
	Filters   store.FilterSet // last filter set actually sent to the store
	Queries   int
	Satisfied bool
}

// Shortfall returns an ErrExhausted-wrapped error when the minimum was not met.
func (o *Outcome) Shortfall(minimum int) error {
	if o.Satisfied {
		return nil
	}
	return fmt.Errorf("%d of %d products after %d queries: %w", len(o.Products), minimum, o.Queries, apperr.ErrExhausted)
}

type Engine struct {
	resolver FilterResolver
	catalog  ProductQuery
	config   Config
	logger   logger.ILogger
}

func NewEngine(resolver FilterResolver, catalog ProductQuery, cfg Config, log logger.ILogger) *Engine {
	def := DefaultConfig()
	if cfg.MinResults <= 0 {
		cfg.MinResults = def.MinResults
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RowCap <= 0 {
		cfg.RowCap = def.RowCap
	}
	return &Engine{resolver: resolver, catalog: catalog, config: cfg, logger: log}
}

func (e *Engine) Config() Config {
	return e.config
}

// Search validates raw, then queries and relaxes until the minimum is met,
// an expansion is unavailable, or attempts run out. A store failure aborts
// the whole search; everything else yields a (possibly empty) Outcome.
func (e *Engine) Search(ctx context.Context, raw store.FilterSet, notify Notifier) (*Outcome, error) {
	if notify == nil {
		notify = func(Notice) {}
	}

	current := e.resolver.ValidateAndCorrect(ctx, raw)
	outcome := &Outcome{Products: []store.Product{}, Filters: current}

	for attempt := 0; attempt <= e.config.MaxAttempts; attempt++ {
		products, err := e.catalog.SearchProducts(ctx, current, e.config.RowCap)
		outcome.Queries++
		if err != nil {
			e.logger.Error(module, "Catalog query failed", map[string]interface{}{
				"attempt": attempt,
				"filters": current,
				"error":   err.Error(),
			})
			return nil, fmt.Errorf("search attempt %d: %w", attempt, err)
		}
		outcome.Products = products
		outcome.Filters = current

		e.logger.Info(module, "Catalog queried", map[string]interface{}{
			"attempt": attempt,
			"filters": current,
			"count":   len(products),
		})

		if len(products) >= e.config.MinResults {
			outcome.Satisfied = true
			return outcome, nil
		}

		notify(Notice{Kind: NoticeShortfall, Attempt: attempt, Count: len(products), Filters: current})
		if attempt == e.config.MaxAttempts {
			break
		}

		expansion, ok := e.resolver.Expand(ctx, current, len(products))
		if !ok {
			notify(Notice{Kind: NoticeExpansionFailed, Attempt: attempt, Count: len(products), Filters: current})
			break
		}
		current = e.resolver.ValidateAndCorrect(ctx, expansion.Filters)
		notify(Notice{Kind: NoticeExpanded, Attempt: attempt, Message: expansion.Message, Filters: current})
	}

	e.logger.Warn(module, "Minimum not reached", map[string]interface{}{
		"error": outcome.Shortfall(e.config.MinResults).Error(),
	})
	return outcome, nil
}
