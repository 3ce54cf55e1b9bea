package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/handlers"
	"github.com/SharmARohitt/Gati-sub001/middleware"
	"github.com/SharmARohitt/Gati-sub001/mlservice"
	"github.com/SharmARohitt/Gati-sub001/store"
)

func main() {
	startTime := time.Now()
	log.Printf("Starting analytics server initialization at %s", startTime.Format(time.RFC3339))

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("No PORT environment variable found, using default: %s", port)
	}

	policy := config.LoadAnalyticsPolicy()
	caches := config.NewCaches(policy)

	loader, cleanup, err := buildLoader()
	if err != nil {
		log.Fatalf("Failed to initialize raw data source: %v", err)
	}
	defer cleanup()

	dataStore := store.New(policy, loader, caches)

	var mlClient *mlservice.Client
	if url := config.MLServiceURL(); url != "" {
		mlClient = mlservice.NewClient(url, policy.LoadTimeout)
		log.Printf("ML service configured at %s", url)
	} else {
		log.Println("No ML service configured; local analytics engine serves everything")
	}

	handler := handlers.NewAnalyticsHandler(dataStore, mlClient)

	// Kick off the initial load in the background so the server starts
	// answering health checks immediately. Queries before the load
	// completes get a structured 503.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), policy.LoadTimeout)
		defer cancel()
		if err := dataStore.LoadAllData(ctx); err != nil {
			log.Printf("Initial data load failed: %v", err)
		}
	}()

	r := mux.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8080",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"Origin",
		},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	r.Use(corsHandler.Handler)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return gorillahandlers.CompressHandler(next)
	})

	api := r.PathPrefix("/api/v1").Subrouter()
	registerRoutes(api, handler)
	log.Println("Routes registered successfully")

	srv := &http.Server{
		Handler:           r,
		Addr:              ":" + port,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			serverErrors <- err
		}
	}()

	log.Printf("Server is running at http://localhost:%s", port)
	log.Printf("Health check endpoint: http://localhost:%s/api/v1/health", port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error received: %v", err)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server shutdown completed successfully")
	}
}

// buildLoader selects the raw data source from configuration. The
// returned cleanup closes the database handle when postgres is in use.
func buildLoader() (store.RecordLoader, func(), error) {
	switch config.DataSource() {
	case "csv":
		path := config.CSVDataPath()
		log.Printf("Using CSV data source at %s", path)
		return &store.CSVLoader{BasePath: path}, func() {}, nil
	default:
		log.Println("Initializing PostgreSQL database...")
		db, err := config.InitDBWithRetry(5)
		if err != nil {
			return nil, nil, err
		}
		log.Println("PostgreSQL database initialized successfully")
		return &store.PostgresLoader{DB: db}, func() { config.CloseDB(db) }, nil
	}
}

func registerRoutes(api *mux.Router, h *handlers.AnalyticsHandler) {
	// Status routes
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/status", h.GetLoadingStatus).Methods("GET")
	api.HandleFunc("/data/counts", h.GetDataCounts).Methods("GET")
	api.HandleFunc("/data/quality", h.GetQualityReport).Methods("GET")
	api.HandleFunc("/data/reload", h.ReloadData).Methods("POST")

	// Aggregation routes
	api.HandleFunc("/overview", h.GetNationalOverview).Methods("GET")
	api.HandleFunc("/states", h.GetStateAggregations).Methods("GET")
	api.HandleFunc("/states/{code}", h.GetStateByCode).Methods("GET")
	api.HandleFunc("/states/{code}/districts", h.GetDistrictsByState).Methods("GET")
	api.HandleFunc("/states/{code}/trends", h.GetStateTrends).Methods("GET")
	api.HandleFunc("/states/{code}/growth", h.GetGrowthRates).Methods("GET")
	api.HandleFunc("/trends", h.GetNationalTrends).Methods("GET")
	api.HandleFunc("/pincode/{pincode}", h.SearchByPincode).Methods("GET")

	// Intelligence routes
	api.HandleFunc("/anomalies", h.DetectAllAnomalies).Methods("GET")
	api.HandleFunc("/risk/compare", h.CompareRiskScores).Methods("GET")
	api.HandleFunc("/risk/{code}", h.GetRiskScore).Methods("GET")
	api.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	api.HandleFunc("/seasonality", h.GetSeasonality).Methods("GET")
	api.HandleFunc("/patterns/{code}", h.DetectPatterns).Methods("GET")
	api.HandleFunc("/correlations/{code}", h.FindCorrelations).Methods("GET")
}
