package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leftover-food-system/config"
	"leftover-food-system/database"
	"leftover-food-system/handlers"
	"leftover-food-system/middleware"
	"leftover-food-system/services"
	"leftover-food-system/utils"
	"leftover-food-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	photos, err := newPhotoStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize photo storage: ", err)
	}

	clock := clockwork.NewRealClock()
	broker := services.NewBroker(32)
	foodService := services.NewFoodService(db, clock, broker, photos)
	userService := services.NewUserService(db)

	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024, // photo uploads
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Name, X-User-Role",
		MaxAge:       86400,
	}))

	handlers.SetupHealthRoutes(app, db)
	app.Static("/uploads", "./uploads")

	// 🔐 everything below requires the gateway token when API_TOKEN is set
	api := app.Group("/api", middleware.GatewayAuthMiddleware(cfg.APIToken))
	handlers.SetupAuthRoutes(api, userService)
	handlers.SetupFoodRoutes(api, foodService)

	sched, err := foodService.StartDigestScheduler(cfg.DigestInterval, cfg.StaleAfter)
	if err != nil {
		log.Fatal(err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.GeoapifyAPIKey != "" {
		geocoder := workers.NewGeocodeWorker(db, workers.DefaultGeoapifyURL, cfg.GeoapifyAPIKey, cfg.GeocodeInterval)
		g.Go(func() error {
			geocoder.Run(gctx)
			return nil
		})
	} else {
		log.Println("⚠️  GEOAPIFY_API_KEY not set, geocode worker disabled")
	}

	g.Go(func() error {
		log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Scheduler] shutdown: %v", err)
		}
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// newPhotoStore prefers R2 and falls back to the local uploads directory.
func newPhotoStore(ctx context.Context, cfg *config.Config) (utils.PhotoStore, error) {
	if cfg.R2.Enabled() {
		log.Printf("✅ Listing photos stored in R2 bucket %s", cfg.R2.Bucket)
		return utils.NewR2Store(ctx, cfg.R2)
	}
	log.Println("⚠️  R2 not configured, storing listing photos under ./uploads")
	return utils.NewLocalStore("uploads", "/uploads")
}
