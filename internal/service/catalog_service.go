package service

import (
	"context"
	"fmt"

	"fashion-recommender-be/internal/mapper"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/internal/repository/specification"
	"fashion-recommender-be/internal/repository/unitofwork"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/store"
	"fashion-recommender-be/pkg/workpool"
)

// catalogService is the relational side of store.Catalog. Every call runs
// through the shared work pool; database errors come back as
// apperr.ErrCollaboratorUnavailable and missing rows as apperr.ErrNotFound.
type catalogService struct {
	uowFactory     unitofwork.RepositoryFactory
	pool           *workpool.Pool
	logger         logger.ILogger
	productMapper  *mapper.ProductMapper
	customerMapper *mapper.CustomerMapper
}

func NewCatalogService(uowFactory unitofwork.RepositoryFactory, pool *workpool.Pool, log logger.ILogger) store.Catalog {
	return &catalogService{
		uowFactory:     uowFactory,
		pool:           pool,
		logger:         log,
		productMapper:  mapper.NewProductMapper(),
		customerMapper: mapper.NewCustomerMapper(),
	}
}

func (s *catalogService) unavailable(op string, err error) error {
	s.logger.Error("CATALOG", "Store call failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return apperr.Unavailable("catalog", fmt.Errorf("%s: %w", op, err))
}

func (s *catalogService) FindCustomer(ctx context.Context, customerID int64) (*store.Customer, error) {
	return workpool.Run(ctx, s.pool, func(ctx context.Context) (*store.Customer, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		customer, err := uow.CustomerRepository().FindOne(ctx, specification.ByCustomerID{CustomerID: customerID})
		if err != nil {
			return nil, s.unavailable("find customer", err)
		}
		if customer == nil {
			return nil, fmt.Errorf("customer %d: %w", customerID, apperr.ErrNotFound)
		}
		c := s.customerMapper.ToStore(customer)
		return &c, nil
	})
}

func (s *catalogService) FindProduct(ctx context.Context, productID int64) (*store.Product, error) {
	return workpool.Run(ctx, s.pool, func(ctx context.Context) (*store.Product, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: productID})
		if err != nil {
			return nil, s.unavailable("find product", err)
		}
		if product == nil {
			return nil, fmt.Errorf("product %d: %w", productID, apperr.ErrNotFound)
		}
		p := s.productMapper.ToStore(product)
		return &p, nil
	})
}

func (s *catalogService) SearchProducts(ctx context.Context, filters store.FilterSet, limit int) ([]store.Product, error) {
	return workpool.Run(ctx, s.pool, func(ctx context.Context) ([]store.Product, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		products, err := uow.ProductRepository().FindAll(ctx,
			specification.MatchingFilters{Filters: filters.Normalize()},
			specification.OrderBy{Field: "id"},
			specification.Limit{N: limit},
		)
		if err != nil {
			return nil, s.unavailable("search products", err)
		}

		out := make([]store.Product, len(products))
		for i, p := range products {
			out[i] = s.productMapper.ToStore(p)
		}
		return out, nil
	})
}

func (s *catalogService) DistinctValues(ctx context.Context, attribute string, limit int) ([]string, error) {
	return workpool.Run(ctx, s.pool, func(ctx context.Context) ([]string, error) {
		values, err := s.uowFactory.NewUnitOfWork(ctx).ProductRepository().DistinctValues(ctx, attribute, limit)
		if err != nil {
			return nil, s.unavailable("distinct values", err)
		}
		return values, nil
	})
}

// FeatureSnapshot is not bounded by the pool timeout: the full read can
// take longer than an interactive call.
func (s *catalogService) FeatureSnapshot(ctx context.Context) ([]store.FeatureRow, error) {
	features, err := s.uowFactory.NewUnitOfWork(ctx).ProductRepository().FindFeatures(ctx)
	if err != nil {
		return nil, s.unavailable("feature snapshot", err)
	}

	rows := make([]store.FeatureRow, len(features))
	for i, f := range features {
		rows[i] = s.productMapper.FeatureToStore(f)
	}
	s.logger.Info("CATALOG", "Feature snapshot loaded", map[string]interface{}{"rows": len(rows)})
	return rows, nil
}

func (s *catalogService) HistoryProducts(ctx context.Context, customerID int64) ([]int64, error) {
	return workpool.Run(ctx, s.pool, func(ctx context.Context) ([]int64, error) {
		ids, err := s.uowFactory.NewUnitOfWork(ctx).InteractionRepository().ProductIDsForCustomer(ctx, customerID)
		if err != nil {
			return nil, s.unavailable("history products", err)
		}
		return ids, nil
	})
}
