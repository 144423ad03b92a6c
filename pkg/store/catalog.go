package store

import "context"

// Catalog is everything the recommendation core reads from the relational store.
// Implementations return apperr.ErrNotFound for missing rows and
// apperr.ErrCollaboratorUnavailable for transport failures.
type Catalog interface {
	FindCustomer(ctx context.Context, customerID int64) (*Customer, error)
	FindProduct(ctx context.Context, productID int64) (*Product, error)

	// SearchProducts applies filters as bound parameters, at most limit rows.
	SearchProducts(ctx context.Context, filters FilterSet, limit int) ([]Product, error)

	DistinctValues(ctx context.Context, attribute string, limit int) ([]string, error)
	FeatureSnapshot(ctx context.Context) ([]FeatureRow, error)

	// HistoryProducts returns product ids the customer bought or viewed.
	HistoryProducts(ctx context.Context, customerID int64) ([]int64, error)
}

// VocabularyProvider serves the allowed values per attribute, possibly cached.
type VocabularyProvider interface {
	Vocabulary(ctx context.Context) (Vocabulary, error)
}
