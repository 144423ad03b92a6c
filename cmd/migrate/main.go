package main

import (
	"log"
	"os"

	"fashion-recommender-be/internal/model"
	"fashion-recommender-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting catalog migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Printf("Warn: Failed to create vector extension: %v. Continuing...", err)
	}

	// 4. AutoMigrate the catalog tables
	log.Println("Step 2: Running AutoMigrate for catalog tables...")
	if err := db.AutoMigrate(&model.Product{}, &model.Customer{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: feature vectors and interaction history.
	// model.ProductFeature carries joined display columns, so these are plain DDL.
	log.Println("Step 3: Creating feature and interaction tables...")

	postMigrationSQL := []string{
		`CREATE TABLE IF NOT EXISTS product_features_encoded (
			product_id BIGINT PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
			feature_vector vector NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(customer_id),
			session_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS click_stream (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			event_name TEXT,
			event_time TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS product_event_metadata (
			event_id TEXT NOT NULL REFERENCES click_stream(event_id),
			product_id BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(customer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_click_stream_session ON click_stream(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_pem_event ON product_event_metadata(event_id);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Post-migration SQL failed: %v", err)
		}
	}

	log.Println("Migration completed successfully.")
}
