package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"timebill/internal/config"
	"timebill/internal/database"
	"timebill/internal/handler"
	"timebill/internal/logger"
	"timebill/internal/mailer"
	"timebill/internal/repository"
	"timebill/internal/router"
	"timebill/internal/service"
)

// outboxFlushLimit caps how many queued invoice emails a single flush retries.
const outboxFlushLimit = 50

func main() {
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting timebill",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	customerRepo := repository.NewCustomerRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	agreementRepo := repository.NewAgreementRepository(db.DB)
	entryRepo := repository.NewTimeEntryRepository(db.DB)
	expenseRepo := repository.NewExpenseRepository(db.DB)
	invoiceRepo := repository.NewInvoiceRepository(db.DB)
	profileRepo := repository.NewProfileRepository(db.DB)

	mailClient := mailer.NewClient(cfg.Mail.BaseURL, cfg.Mail.APIKey,
		time.Duration(cfg.Mail.Timeout)*time.Second, log.Logger)
	outbox := mailer.NewOutbox(db.DB, log.Logger)

	// Retry emails left over from a previous run.
	if mailClient.Enabled() {
		if err := outbox.Flush(mailClient, outboxFlushLimit); err != nil {
			log.Warn("Outbox flush failed", zap.Error(err))
		}
	}

	customerService := service.NewCustomerService(customerRepo, log.Logger)
	entryService := service.NewTimeEntryService(entryRepo, customerRepo, taskRepo, log.Logger)
	invoiceService := service.NewInvoiceService(invoiceRepo, entryRepo, customerRepo, profileRepo,
		mailClient, outbox, cfg.Billing.VATPercentage, cfg.Billing.DefaultCurrency, log.Logger)
	analyticsService := service.NewAnalyticsService(entryRepo, expenseRepo, profileRepo,
		cfg.Billing.DefaultCurrency, log.Logger)

	timeEntryHandler := handler.NewTimeEntryHandler(entryService, log.Logger)
	customerHandler := handler.NewCustomerHandler(customerService, log.Logger)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log.Logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log.Logger)
	catalogHandler := handler.NewCatalogHandler(taskRepo, agreementRepo, expenseRepo, profileRepo, log.Logger)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(timeEntryHandler, customerHandler, invoiceHandler,
			analyticsHandler, catalogHandler, log.Logger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
