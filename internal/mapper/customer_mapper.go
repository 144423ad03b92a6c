package mapper

import (
	"fashion-recommender-be/internal/entity"
	"fashion-recommender-be/internal/model"
	"fashion-recommender-be/pkg/store"
)

type CustomerMapper struct{}

func NewCustomerMapper() *CustomerMapper {
	return &CustomerMapper{}
}

func (m *CustomerMapper) ToEntity(c *model.Customer) *entity.Customer {
	if c == nil {
		return nil
	}
	return &entity.Customer{
		Id:        c.CustomerId,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

func (m *CustomerMapper) ToStore(e *entity.Customer) store.Customer {
	return store.Customer{ID: e.Id, FirstName: e.FirstName, LastName: e.LastName}
}
