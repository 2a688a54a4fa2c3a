package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/api"
	"github.com/campusbooks/bookstore-go-app/internal/db"
	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/services"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/campusbooks/bookstore-go-app/pkg/config"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	log.SetLevel(cfg.ParseLogLevel())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Initialize OpenTelemetry metrics
	ctx := context.Background()
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down meter provider: %v", err)
		}
	}()

	// Initialize database
	database, err := db.NewDB(cfg.GetDSN(), cfg.OTELServiceName, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Initialize schema
	schemaSQL, err := os.ReadFile("schema.sql")
	if err != nil {
		log.Warnf("Could not read schema.sql: %v; assuming schema already exists", err)
	} else if err := database.InitSchema(ctx, string(schemaSQL)); err != nil {
		log.Warnf("Could not initialize schema: %v; assuming schema already exists", err)
	}

	// Initialize store and services
	st := store.NewMySQL(database, log, appMetrics)
	cartService := services.NewCartService(st, log, appMetrics)
	orderService := services.NewOrderService(st, log, appMetrics)
	productService := services.NewProductService(st, log, appMetrics)
	receiptService := services.NewReceiptService(st, log, appMetrics)

	// Start the expiry sweeps
	sweepCtx, stopSweeps := context.WithCancel(ctx)
	defer stopSweeps()
	sweeper := services.NewSweeper(st, log, appMetrics, cfg.SweepInterval, cfg.CartTTL, cfg.PickupTTL)
	sweeper.Start(sweepCtx)

	// Initialize app and routes
	app := api.NewApp(cfg, database, log, appMetrics, cartService, orderService, productService, receiptService)
	router := mux.NewRouter()
	app.SetupRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server starting on port %s", cfg.AppPort)
		log.Infof("OTLP endpoint: %s", cfg.OTELExporterOTLPEndpoint)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopSweeps()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
