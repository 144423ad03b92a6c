package contract

import (
	"context"

	"fashion-recommender-be/internal/entity"
	"fashion-recommender-be/internal/repository/specification"
)

type ProductRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DistinctValues(ctx context.Context, attribute string, limit int) ([]string, error)
	FindFeatures(ctx context.Context) ([]*entity.ProductFeature, error)
}
