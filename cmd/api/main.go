package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/NiellCast/meta-prediction/internal/config"
	"github.com/NiellCast/meta-prediction/internal/handler"
	"github.com/NiellCast/meta-prediction/internal/middleware"
	"github.com/NiellCast/meta-prediction/internal/notify"
	"github.com/NiellCast/meta-prediction/internal/repository"
	"github.com/NiellCast/meta-prediction/internal/service"
)

func main() {
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

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, logger)
	if err := repo.EnsureSchema(); err != nil {
		logger.Fatalf("Failed to ensure schema: %v", err)
	}
	svc := service.NewService(repo, logger, cfg.ForecastHorizon)
	svc.SetNotifier(notify.NewSender(cfg, logger))
	h := handler.NewHandler(svc, logger)

	// Daily sweep: resync every owner and check goal attainment
	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, svc.Sweep); err != nil {
		logger.Fatalf("Failed to schedule sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequireOwner())
	r.HandleFunc("/balances", h.ListBalances).Methods("GET")
	r.HandleFunc("/balances", h.AddBalance).Methods("POST")
	r.HandleFunc("/balances/{id}", h.UpdateBalance).Methods("PUT")
	r.HandleFunc("/balances/{id}", h.DeleteBalance).Methods("DELETE")
	r.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/transactions", h.AddTransaction).Methods("POST")
	r.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	r.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
	r.HandleFunc("/goal", h.SetGoal).Methods("PUT")
	r.HandleFunc("/summary", h.GetSummary).Methods("GET")
	r.HandleFunc("/chart", h.GetChart).Methods("GET")
	r.HandleFunc("/heatmap", h.GetHeatmap).Methods("GET")
	r.HandleFunc("/recommendation", h.GetRecommendation).Methods("GET")
	r.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	r.HandleFunc("/reset", h.Reset).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
