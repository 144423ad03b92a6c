package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/internal/repository/specification"
	"fashion-recommender-be/internal/repository/unitofwork"
	"fashion-recommender-be/internal/service"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/database"
	"fashion-recommender-be/pkg/store"
	"fashion-recommender-be/pkg/workpool"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openCatalog(t *testing.T) *gorm.DB {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	return gormDB
}

func TestCatalogRepositories(t *testing.T) {
	gormDB := openCatalog(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	t.Run("Count products", func(t *testing.T) {
		count, err := uow.ProductRepository().Count(ctx)
		assert.NoError(t, err)
		t.Logf("Product count: %d", count)
	})

	t.Run("Distinct values are bounded", func(t *testing.T) {
		values, err := uow.ProductRepository().DistinctValues(ctx, "gender", 100)
		assert.NoError(t, err)
		assert.LessOrEqual(t, len(values), 100)
	})

	t.Run("Filtered query honours the limit", func(t *testing.T) {
		products, err := uow.ProductRepository().FindAll(ctx,
			specification.MatchingFilters{Filters: store.FilterSet{"gender": {"Men", "Women"}}},
			specification.Limit{N: 3},
		)
		assert.NoError(t, err)
		assert.LessOrEqual(t, len(products), 3)
	})

	t.Run("Feature rows carry vectors", func(t *testing.T) {
		features, err := uow.ProductRepository().FindFeatures(ctx)
		assert.NoError(t, err)
		for _, f := range features {
			assert.NotEmpty(t, f.Vector)
		}
	})
}

func TestCatalogServiceNotFound(t *testing.T) {
	gormDB := openCatalog(t)

	catalog := service.NewCatalogService(unitofwork.NewRepositoryFactory(gormDB), workpool.New(4, 0), logger.NewNopLogger())

	_, err := catalog.FindCustomer(context.Background(), -1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
