package implementation

import (
	"context"
	"errors"

	"fashion-recommender-be/internal/entity"
	"fashion-recommender-be/internal/mapper"
	"fashion-recommender-be/internal/model"
	"fashion-recommender-be/internal/repository/contract"
	"fashion-recommender-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CustomerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CustomerMapper
}

func NewCustomerRepository(db *gorm.DB) contract.CustomerRepository {
	return &CustomerRepositoryImpl{
		db:     db,
		mapper: mapper.NewCustomerMapper(),
	}
}

func (r *CustomerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error) {
	var m model.Customer
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

type InteractionRepositoryImpl struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) contract.InteractionRepository {
	return &InteractionRepositoryImpl{db: db}
}

// ProductIDsForCustomer walks transactions -> click stream -> event metadata
// and keeps ids that still exist in the catalog.
func (r *InteractionRepositoryImpl) ProductIDsForCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("transactions AS t").
		Joins("JOIN click_stream cs ON cs.session_id = t.session_id").
		Joins("JOIN product_event_metadata pem ON pem.event_id = cs.event_id").
		Joins("JOIN products p ON p.id = pem.product_id").
		Where("t.customer_id = ?", customerID).
		Distinct().
		Pluck("pem.product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
