package service

import (
	"context"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/events"
	pktNats "fashion-recommender-be/pkg/nats"

	"github.com/google/uuid"
)

// IndexRebuilder swaps in a freshly built similarity index.
type IndexRebuilder interface {
	Rebuild(ctx context.Context) error
}

type ICatalogSyncService interface {
	Start(ctx context.Context) error
	HandleEvent(ctx context.Context, event events.Event) error
}

// catalogSyncService rebuilds the local index and drops the cached
// vocabulary whenever the catalog announces an update. Each instance uses
// its own durable so every instance sees every update.
type catalogSyncService struct {
	subscriber *pktNats.Subscriber
	vocabulary IVocabularyService
	index      IndexRebuilder
	logger     logger.ILogger
	durable    string
}

func NewCatalogSyncService(subscriber *pktNats.Subscriber, vocabulary IVocabularyService, index IndexRebuilder, log logger.ILogger) ICatalogSyncService {
	return &catalogSyncService{
		subscriber: subscriber,
		vocabulary: vocabulary,
		index:      index,
		logger:     log,
		durable:    "recommender-catalog-sync-" + uuid.NewString()[:8],
	}
}

func (s *catalogSyncService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, pktNats.Subject(events.TypeCatalogUpdated), s.durable, s.HandleEvent)
}

func (s *catalogSyncService) HandleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("EVENTS", "Catalog updated, rebuilding", map[string]interface{}{
		"event_id": event.EventID(),
	})
	s.vocabulary.Invalidate(ctx)
	return s.index.Rebuild(ctx)
}
