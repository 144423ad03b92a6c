package unitofwork

import (
	"context"

	"fashion-recommender-be/internal/repository/contract"
)

type UnitOfWork interface {
	// Begin opens a read-only repeatable-read transaction so several reads
	// see the same catalog snapshot.
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	CustomerRepository() contract.CustomerRepository
	InteractionRepository() contract.InteractionRepository
}
