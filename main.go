package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/streadway/amqp"

	"produtos/internal/cache"
	"produtos/internal/config"
	"produtos/internal/database"
	"produtos/internal/handlers"
	"produtos/internal/models"
	"produtos/internal/repositories"
	"produtos/internal/services"
	"produtos/pkg/logx"
	"produtos/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	logx.Init(logx.Options{Production: cfg.IsProduction()})
	if err != nil {
		logx.Fatal().Err(err).Msg("Invalid configuration")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- Initialize Repository ---
	productRepo, closeStore, err := openProductRepository(startupCtx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open product store")
	}
	defer closeStore()

	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(startupCtx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialize Redis cache")
		}
		defer redisCache.Close()
		productRepo = repositories.NewCachedProductRepository(productRepo, redisCache)
		logx.Info().Str("addr", cfg.RedisAddr).Msg("Product cache enabled")
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.Consume(logProductEvent); err != nil {
			logx.Error().Err(err).Msg("Failed to start product event consumer")
		}
	}

	// --- Initialize Service and Handler ---
	productService := services.NewProductService(productRepo, publisher)
	productHandler := handlers.NewProductHandler(productService, cfg.RequestTimeout)

	app := newApp(productHandler)

	// --- Start HTTP Server ---
	logx.Info().Str("port", cfg.AppPort).Str("driver", cfg.StorageDriver).Msg("Starting server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logx.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	logx.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logx.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	logx.Info().Msg("Server gracefully stopped")
}

// newApp builds the Fiber app with middleware, the health check and the
// product routes.
func newApp(productHandler *handlers.ProductHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "produtos",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: logx.Writer()}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	productHandler.RegisterRoutes(app)
	return app
}

// openProductRepository opens the store selected by cfg.StorageDriver. The
// returned func releases it.
func openProductRepository(ctx context.Context, cfg config.Config) (repositories.ProductRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.OpenGORM(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return repositories.NewGORMProductRepository(db), closeDB, nil
	case config.DriverMemory:
		return repositories.NewMockProductRepository(), func() {}, nil
	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoColl)
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logx.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		}
		return repositories.NewMongoProductRepository(coll), disconnect, nil
	}
}

// logProductEvent records every product change published on the queue.
func logProductEvent(msg amqp.Delivery) error {
	var event models.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logx.Warn().Err(err).Uint64("tag", msg.DeliveryTag).Msg("Discarding malformed product event")
		return err
	}
	logx.Info().
		Str("type", event.Type).
		Str("id", event.ProductID).
		Time("occurred_at", event.OccurredAt).
		Msg("Product event")
	return nil
}
