package bootstrap

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"fashion-recommender-be/internal/config"
	"fashion-recommender-be/internal/controller"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/internal/repository/cache"
	"fashion-recommender-be/internal/repository/memory"
	"fashion-recommender-be/internal/repository/unitofwork"
	"fashion-recommender-be/internal/service"
	"fashion-recommender-be/internal/websocket"
	"fashion-recommender-be/pkg/llm/factory"
	pktNats "fashion-recommender-be/pkg/nats"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/recommend/dialogue"
	"fashion-recommender-be/pkg/recommend/filter"
	"fashion-recommender-be/pkg/recommend/search"
	"fashion-recommender-be/pkg/recommend/session"
	"fashion-recommender-be/pkg/similarity"
	"fashion-recommender-be/pkg/workpool"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	AdminController controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService    service.IConsumerService
	CatalogSyncService service.ICatalogSyncService
	Sessions           *session.Manager
	IndexHolder        *similarity.Holder

	WebSocketHub *websocket.Hub
	Logger       logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	rc := cfg.Recommender

	nluPool := workpool.New(rc.WorkerPoolSize, cfg.Ai.NLUTimeout)
	storePool := workpool.New(rc.WorkerPoolSize, 0)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	language := nlu.NewClient(nlu.NewLLMCapability(llmProvider), nluPool, sysLogger)

	// 4. Infrastructure
	var closers []func()

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		closers = append(closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		closers = append(closers, natsSub.Close)
	}

	rdb := newRedisClient(cfg.App.RedisURL)

	// 5. Services
	catalog := service.NewCatalogService(uowFactory, storePool, sysLogger)
	vocabulary := service.NewVocabularyService(
		uowFactory,
		cache.NewVocabularyCache(rdb, rc.VocabularyTTL, sysLogger),
		sysLogger,
	)
	resolver := filter.NewResolver(language, vocabulary, sysLogger)
	engine := search.NewEngine(resolver, catalog, search.Config{
		MinResults:  rc.MinResults,
		MaxAttempts: rc.MaxAttempts,
		RowCap:      rc.RowCap,
	}, sysLogger)

	sessions := session.NewManager(memory.NewSessionRepository(), sysLogger)
	holder := similarity.NewHolder(catalog, similarity.Config{
		Links:    rc.IndexLinks,
		EfSearch: rc.IndexEfSearch,
	}, sysLogger)

	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub, sysLogger)

	// A nil *Publisher must not become a non-nil relay
	var relay service.EventRelay
	if natsPub != nil {
		relay = natsPub
	}
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventTopic, relay, sysLogger)

	var catalogSync service.ICatalogSyncService
	if natsSub != nil {
		catalogSync = service.NewCatalogSyncService(natsSub, vocabulary, holder, sysLogger)
	}

	orchestrator := dialogue.NewOrchestrator(
		sessions,
		language,
		engine,
		catalog,
		holder,
		dialogue.Config{
			NeighbourPool: rc.NeighbourPool,
			SampleSize:    rc.SampleSize,
			Seed:          rc.RandomSeed,
		},
		sysLogger,
		dialogue.WithPublisher(publisherService),
	)

	chatService := service.NewChatService(orchestrator, sessions)
	indexService := service.NewIndexService(holder, vocabulary, sysLogger)

	// 6. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "websocket.log"))
	wsHub := websocket.NewHub(rdb, orchestrator.HandleTurn, wsLogger)
	go wsHub.Run()

	return &Container{
		ChatController:     controller.NewChatController(chatService),
		AdminController:    controller.NewAdminController(indexService),
		ConsumerService:    consumerService,
		CatalogSyncService: catalogSync,
		Sessions:           sessions,
		IndexHolder:        holder,
		WebSocketHub:       wsHub,
		Logger:             sysLogger,
		closers:            closers,
	}
}

// Close releases broker connections.
func (c *Container) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
	_ = c.Logger.Sync()
}

func llmBaseURL(cfg *config.Config) string {
	if strings.EqualFold(cfg.Ai.LLMProvider, factory.ProviderHuggingFace) {
		return cfg.Ai.HuggingFaceURL
	}
	return cfg.Ai.OllamaBaseURL
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
