package implementation

import (
	"context"
	"errors"
	"fmt"

	"fashion-recommender-be/internal/entity"
	"fashion-recommender-be/internal/mapper"
	"fashion-recommender-be/internal/model"
	"fashion-recommender-be/internal/repository/contract"
	"fashion-recommender-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

func (r *ProductRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	var m model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	var models []*model.Product
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Product{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Product{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProductRepositoryImpl) DistinctValues(ctx context.Context, attribute string, limit int) ([]string, error) {
	expr, ok := specification.AttributeExpr(attribute)
	if !ok {
		return nil, fmt.Errorf("unknown attribute %q", attribute)
	}

	var values []string
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Product{}),
		specification.AttributeNotNull{Attribute: attribute},
		specification.Limit{N: limit},
	)
	if err := query.Distinct().Pluck(expr, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// FindFeatures reads every encoded vector with the product's display data.
// Vectors without a product row keep an empty name.
func (r *ProductRepositoryImpl) FindFeatures(ctx context.Context) ([]*entity.ProductFeature, error) {
	var rows []*model.ProductFeature
	err := r.db.WithContext(ctx).
		Table("product_features_encoded AS pf").
		Select("pf.product_id, pf.feature_vector, p.productdisplayname, p.image_url").
		Joins("LEFT JOIN products p ON p.id = pf.product_id").
		Order("pf.product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	features := make([]*entity.ProductFeature, len(rows))
	for i, row := range rows {
		features[i] = r.mapper.FeatureToEntity(row)
	}
	return features, nil
}
