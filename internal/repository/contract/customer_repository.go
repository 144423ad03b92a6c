package contract

import (
	"context"

	"fashion-recommender-be/internal/entity"
	"fashion-recommender-be/internal/repository/specification"
)

type CustomerRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error)
}

// InteractionRepository reads the purchase and click-stream history.
type InteractionRepository interface {
	ProductIDsForCustomer(ctx context.Context, customerID int64) ([]int64, error)
}
