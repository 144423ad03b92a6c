package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"fashion-recommender-be/internal/model"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/database"
	"fashion-recommender-be/pkg/events"
	pktNats "fashion-recommender-be/pkg/nats"

	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const vectorDimension = 16

type featureRow struct {
	ProductId     int64           `gorm:"column:product_id;primaryKey"`
	FeatureVector pgvector.Vector `gorm:"column:feature_vector"`
}

func (featureRow) TableName() string {
	return "product_features_encoded"
}

type demoItem struct {
	name, gender, master, sub, article, colour, season, usage string
}

var demoItems = []demoItem{
	{"Nike Men Black Running Shoes", "Men", "Footwear", "Shoes", "Sports Shoes", "Black", "Summer", "Sports"},
	{"Puma Men Grey Running Shoes", "Men", "Footwear", "Shoes", "Sports Shoes", "Grey", "Summer", "Sports"},
	{"Adidas Women White Sneakers", "Women", "Footwear", "Shoes", "Casual Shoes", "White", "Fall", "Casual"},
	{"Catwalk Women Red Heels", "Women", "Footwear", "Shoes", "Heels", "Red", "Winter", "Party"},
	{"Levis Men Blue Jeans", "Men", "Apparel", "Bottomwear", "Jeans", "Blue", "Fall", "Casual"},
	{"Jealous 21 Women Black Jeans", "Women", "Apparel", "Bottomwear", "Jeans", "Black", "Fall", "Casual"},
	{"Arrow Men White Formal Shirt", "Men", "Apparel", "Topwear", "Shirts", "White", "Summer", "Formal"},
	{"Van Heusen Men Navy Blue Shirt", "Men", "Apparel", "Topwear", "Shirts", "Navy Blue", "Summer", "Formal"},
	{"Nike Women Pink Tshirt", "Women", "Apparel", "Topwear", "Tshirts", "Pink", "Summer", "Sports"},
	{"Puma Men Black Tshirt", "Men", "Apparel", "Topwear", "Tshirts", "Black", "Summer", "Casual"},
	{"Fastrack Men Black Watch", "Men", "Accessories", "Watches", "Watches", "Black", "Winter", "Casual"},
	{"Titan Women Gold Watch", "Women", "Accessories", "Watches", "Watches", "Gold", "Winter", "Formal"},
	{"Baggit Women Brown Handbag", "Women", "Accessories", "Bags", "Handbags", "Brown", "Fall", "Casual"},
	{"Wildcraft Unisex Green Backpack", "Unisex", "Accessories", "Bags", "Backpacks", "Green", "Fall", "Casual"},
	{"Ray-Ban Men Black Sunglasses", "Men", "Accessories", "Eyewear", "Sunglasses", "Black", "Summer", "Casual"},
	{"Biba Women Red Kurta", "Women", "Apparel", "Topwear", "Kurtas", "Red", "Fall", "Ethnic"},
}

var demoCustomers = []model.Customer{
	{CustomerId: 1001, FirstName: "Ana", LastName: "Souza"},
	{CustomerId: 1002, FirstName: "Bruno", LastName: "Lima"},
	{CustomerId: 1003, FirstName: "Carla", LastName: "Mendes"},
}

// history maps customer ids to the demo products they interacted with.
var history = map[int64][]int64{
	1001: {1, 9},
	1002: {3, 13, 16},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo catalog...")

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := seedProducts(tx); err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&demoCustomers).Error; err != nil {
			return fmt.Errorf("customers: %w", err)
		}
		return seedHistory(tx)
	})
	if err != nil {
		log.Fatalf("Error: Seeding failed: %v", err)
	}

	log.Printf("Seeded %d products and %d customers.", len(demoItems), len(demoCustomers))

	announce(os.Getenv("NATS_URL"))
}

func seedProducts(tx *gorm.DB) error {
	rng := rand.New(rand.NewSource(7))
	year := 2012

	for i, item := range demoItems {
		id := int64(i + 1)
		product := model.Product{
			Id:                 id,
			ProductDisplayName: item.name,
			ImageUrl:           strPtr(fmt.Sprintf("https://picsum.photos/seed/product-%d/400/533", id)),
			Gender:             strPtr(item.gender),
			MasterCategory:     strPtr(item.master),
			SubCategory:        strPtr(item.sub),
			ArticleType:        strPtr(item.article),
			BaseColour:         strPtr(item.colour),
			Season:             strPtr(item.season),
			Year:               &year,
			Usage:              strPtr(item.usage),
			ExtraAttributes:    datatypes.JSONMap{"source": "demo"},
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&product).Error; err != nil {
			return fmt.Errorf("product %d: %w", id, err)
		}

		feature := featureRow{ProductId: id, FeatureVector: pgvector.NewVector(demoVector(item, rng))}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&feature).Error; err != nil {
			return fmt.Errorf("feature %d: %w", id, err)
		}
	}
	return nil
}

// demoVector places products sharing category and colour near each other.
func demoVector(item demoItem, rng *rand.Rand) []float32 {
	v := make([]float32, vectorDimension)
	for _, attr := range []string{item.master, item.sub, item.article, item.colour, item.usage} {
		v[bucket(attr)] += 1
	}
	for i := range v {
		v[i] += float32(rng.NormFloat64() * 0.05)
	}
	return v
}

func bucket(s string) int {
	h := 0
	for _, r := range s {
		h = (h*31 + int(r)) % vectorDimension
	}
	return h
}

func seedHistory(tx *gorm.DB) error {
	for customerID, productIDs := range history {
		sessionID := fmt.Sprintf("demo-session-%d", customerID)
		if err := tx.Exec(
			`INSERT INTO transactions (customer_id, session_id) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM transactions WHERE session_id = ?)`,
			customerID, sessionID, sessionID,
		).Error; err != nil {
			return fmt.Errorf("transaction %d: %w", customerID, err)
		}

		for _, productID := range productIDs {
			eventID := fmt.Sprintf("%s-%d", sessionID, productID)
			if err := tx.Exec(
				`INSERT INTO click_stream (event_id, session_id, event_name) VALUES (?, ?, 'ADD_TO_CART') ON CONFLICT DO NOTHING`,
				eventID, sessionID,
			).Error; err != nil {
				return fmt.Errorf("click %s: %w", eventID, err)
			}
			if err := tx.Exec(
				`INSERT INTO product_event_metadata (event_id, product_id) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM product_event_metadata WHERE event_id = ?)`,
				eventID, productID, eventID,
			).Error; err != nil {
				return fmt.Errorf("metadata %s: %w", eventID, err)
			}
		}
	}
	return nil
}

// announce tells running servers to rebuild their index. Best effort.
func announce(natsURL string) {
	if natsURL == "" {
		log.Println("Info: NATS_URL not set, running servers will not rebuild automatically")
		return
	}

	pub, err := pktNats.NewPublisher(natsURL, logger.NewNopLogger())
	if err != nil {
		log.Printf("Warn: NATS unavailable: %v", err)
		return
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.New(events.TypeCatalogUpdated, map[string]interface{}{"source": "seed", "products": len(demoItems)}, time.Now())
	if err := pub.Publish(ctx, event); err != nil {
		log.Printf("Warn: Failed to announce catalog update: %v", err)
		return
	}
	log.Println("Announced catalog update.")
}

func strPtr(s string) *string {
	return &s
}
