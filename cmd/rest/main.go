package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fashion-recommender-be/internal/bootstrap"
	"fashion-recommender-be/internal/config"
	"fashion-recommender-be/internal/server"
	"fashion-recommender-be/internal/tracer"
	"fashion-recommender-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	color.Cyan("=== Fashion Recommender ===")

	// 1. Load Configuration
	cfg := config.Load()

	// Tracer is a no-op unless OTEL_ENABLED=true
	shutdownTracer := tracer.InitTracer(cfg.App.Environment)
	defer shutdownTracer(context.Background())
	if cfg.App.JwtSecret == "" {
		color.Yellow("JWT_SECRET is empty: admin routes will reject every token")
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Build the similarity index. The chat still serves searches without it.
	if err := container.IndexHolder.Rebuild(ctx); err != nil {
		color.Red("Similarity index unavailable: %v", err)
	} else {
		color.Green("Similarity index ready (%d products)", container.IndexHolder.Status().Items)
	}

	// 5. Start Background Services
	container.Sessions.StartSweeper(ctx, cfg.Recommender.SweepInterval, cfg.Recommender.SessionTTL)

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.CatalogSyncService != nil {
		if err := container.CatalogSyncService.Start(ctx); err != nil {
			log.Printf("Catalog sync disabled: %v", err)
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
