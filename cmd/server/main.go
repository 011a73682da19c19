package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-service/config"
	"ledger-service/internal/api"
	"ledger-service/internal/broker"
	"ledger-service/internal/redisclient"
	"ledger-service/internal/refcache"
	"ledger-service/internal/service"
	"ledger-service/internal/sheets"
	"ledger-service/internal/util"
	"ledger-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting ledger service")

	tp, err := util.InitTracer("ledger-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	if cfg.Sheets.SpreadsheetID == "" {
		log.Fatal("SHEETS_SPREADSHEET_ID must be set")
	}
	store := sheets.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.SpreadsheetID, func() string {
		return cfg.Sheets.AccessToken
	})
	log.Println("Tabular store client initialized")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicLedger)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cache := refcache.New(store, redisClient, cfg.Redis.CacheTTL)
	idgen := service.NewIDGenerator()

	orderService := service.NewOrderService(store, cache, redisClient, eventPublisher)
	ledgerService := service.NewLedgerService(store, cache, eventPublisher)
	catalogService := service.NewCatalogService(store, cache, idgen, eventPublisher)
	dashboardService := service.NewDashboardService(store)

	ctx := context.Background()
	if err := cache.RefreshAll(ctx); err != nil {
		log.Printf("Initial reference data load failed: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicLedger, cfg.Kafka.ConsumerGroup)
	refreshWorker := worker.NewRefreshWorker(consumer, cache)
	go func() {
		if err := refreshWorker.Start(workerCtx); err != nil {
			log.Printf("Refresh worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(orderService, ledgerService, catalogService, dashboardService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	refreshWorker.Stop()

	log.Println("Server exited")
}
