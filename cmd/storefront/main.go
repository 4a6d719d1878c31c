package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/clients"
	"github.com/papershack/storefront-orders-service/internal/config"
	"github.com/papershack/storefront-orders-service/internal/events"
	"github.com/papershack/storefront-orders-service/internal/handlers"
	"github.com/papershack/storefront-orders-service/internal/logging"
	"github.com/papershack/storefront-orders-service/internal/repository"
	"github.com/papershack/storefront-orders-service/internal/server"
	"github.com/papershack/storefront-orders-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := logging.New("storefront-orders")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)

	catalogClient := clients.NewHTTPCatalogClient(cfg.CatalogService, logger)
	gateway := clients.NewStripeGateway(cfg.Stripe, cfg.Currency, logger)
	notificationClient := clients.NewSendGridNotificationClient(cfg.SendGrid, logger)
	marketingClient := clients.NewSendGridMarketingClient(cfg.SendGrid, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	validator := service.NewCartValidator(catalogClient, logger)
	workflow := service.NewOrderWorkflow(
		validator,
		gateway,
		orderRepo,
		orderCache,
		notificationClient,
		marketingClient,
		eventPublisher,
		cfg.Features,
		logger,
	)

	h := handlers.NewHandlers(workflow, logger)
	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("currency", cfg.Currency),
			zap.Bool("enable_order_caching", cfg.Features.EnableOrderCaching),
			zap.Bool("enable_order_events", cfg.Features.EnableOrderEvents),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
