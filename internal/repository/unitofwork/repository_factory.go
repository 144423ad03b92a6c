package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

// RepositoryFactory hands out catalog units of work bound to one request.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type catalogFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &catalogFactory{db: db}
}

// NewUnitOfWork is cheap; create one per catalog operation.
func (f *catalogFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db.WithContext(ctx))
}
