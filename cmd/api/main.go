package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/config"
	"github.com/Kamran7679/finance-tracker/internal/forecast"
	"github.com/Kamran7679/finance-tracker/internal/handler"
	"github.com/Kamran7679/finance-tracker/internal/integrations/rates"
	"github.com/Kamran7679/finance-tracker/internal/middleware"
	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/Kamran7679/finance-tracker/internal/notify"
	"github.com/Kamran7679/finance-tracker/internal/repository"
	"github.com/Kamran7679/finance-tracker/internal/scheduler"
	"github.com/Kamran7679/finance-tracker/internal/service"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize stores
	accountStore := repository.NewAccountStore(cfg.AccountsPath(), logger)
	txlog := repository.NewTransactionLog(cfg.TransactionsPath(), logger)

	// Initialize layers
	svc, err := service.NewService(accountStore, txlog, logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize service: %v", err)
	}

	alerts := notify.NewSender(cfg, logger)
	if alerts.Enabled() {
		svc.SetNotifier(alerts)
	}

	model, err := forecast.LoadModel(cfg.ModelFile)
	if err != nil {
		if errors.Is(err, models.ErrModelUnavailable) {
			logger.Warnf("No trained model at %s; forecasts disabled", cfg.ModelFile)
		} else {
			logger.Fatalf("Failed to load model: %v", err)
		}
	}
	engine := forecast.NewEngine(forecast.NewPreprocessor(txlog, logger), model, logger)

	ratesClient := rates.NewClient(cfg, logger)
	h := handler.NewHandler(svc, engine, ratesClient, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID(logger))
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/rates", h.Rates).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/account", h.Account).Methods("GET")
	authRouter.HandleFunc("/deposit", h.Deposit).Methods("POST")
	authRouter.HandleFunc("/withdraw", h.Withdraw).Methods("POST")
	authRouter.HandleFunc("/transfer", h.Transfer).Methods("POST")
	authRouter.HandleFunc("/loans/request", h.RequestLoan).Methods("POST")
	authRouter.HandleFunc("/loans/repay", h.RepayLoan).Methods("POST")
	authRouter.HandleFunc("/budget", h.SetBudget).Methods("PUT")
	authRouter.HandleFunc("/recurring", h.AddRecurring).Methods("POST")
	authRouter.HandleFunc("/transactions", h.RecentTransactions).Methods("GET")
	authRouter.HandleFunc("/forecast", h.ForecastTotal).Methods("GET")
	authRouter.HandleFunc("/forecast/series", h.ForecastSeries).Methods("GET")

	// Start the daily recurring-charge sweep
	sweep := scheduler.New(svc, logger)
	if err := sweep.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sweep.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
