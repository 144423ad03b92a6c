package service

import (
	"context"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/internal/repository/cache"
	"fashion-recommender-be/internal/repository/unitofwork"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/store"
)

// VocabularyLimit caps the distinct values loaded per attribute.
const VocabularyLimit = 100

type IVocabularyService interface {
	Vocabulary(ctx context.Context) (store.Vocabulary, error)
	Invalidate(ctx context.Context)
}

type vocabularyService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.VocabularyCache
	logger     logger.ILogger
}

func NewVocabularyService(uowFactory unitofwork.RepositoryFactory, vocabCache *cache.VocabularyCache, log logger.ILogger) IVocabularyService {
	return &vocabularyService{uowFactory: uowFactory, cache: vocabCache, logger: log}
}

// Vocabulary serves the cached copy or reloads every attribute inside one
// read-only transaction.
func (s *vocabularyService) Vocabulary(ctx context.Context) (store.Vocabulary, error) {
	if vocab, ok := s.cache.Get(ctx); ok {
		return vocab, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperr.Unavailable("catalog", err)
	}
	defer uow.Rollback() // no-op after Commit

	vocab := store.Vocabulary{}
	for _, attribute := range store.Attributes {
		values, err := uow.ProductRepository().DistinctValues(ctx, attribute, VocabularyLimit)
		if err != nil {
			s.logger.Error("CATALOG", "Vocabulary load failed", map[string]interface{}{
				"attribute": attribute,
				"error":     err.Error(),
			})
			return nil, apperr.Unavailable("catalog", err)
		}
		vocab[attribute] = values
	}
	if err := uow.Commit(); err != nil {
		return nil, apperr.Unavailable("catalog", err)
	}

	s.cache.Set(ctx, vocab)
	s.logger.Info("CATALOG", "Vocabulary loaded", map[string]interface{}{"attributes": len(vocab)})
	return vocab, nil
}

func (s *vocabularyService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx)
}
