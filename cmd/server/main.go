package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/john-courter-lu/LoncotesLibrary/internal/config"
	"github.com/john-courter-lu/LoncotesLibrary/internal/handler"
	"github.com/john-courter-lu/LoncotesLibrary/internal/repository"
	"github.com/john-courter-lu/LoncotesLibrary/internal/service"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	materialRepo := repository.NewMaterialRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	patronRepo := repository.NewPatronRepository(db)
	checkoutRepo := repository.NewCheckoutRepository(db)

	// Initialize service
	libraryService := service.NewLibraryService(
		materialRepo,
		referenceRepo,
		patronRepo,
		checkoutRepo,
		service.NewRedisCache(redisClient),
		cfg,
	)

	materialHandler := handler.NewMaterialHandler(libraryService)
	referenceHandler := handler.NewReferenceHandler(libraryService)
	patronHandler := handler.NewPatronHandler(libraryService)
	checkoutHandler := handler.NewCheckoutHandler(libraryService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(materialHandler, referenceHandler, patronHandler, checkoutHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.LoggingMiddleware(response.CORSMiddleware(router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	materialHandler *handler.MaterialHandler,
	referenceHandler *handler.ReferenceHandler,
	patronHandler *handler.PatronHandler,
	checkoutHandler *handler.CheckoutHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/materials", materialHandler.List).Methods("GET")
	api.HandleFunc("/materials", materialHandler.Create).Methods("POST")
	api.HandleFunc("/materials/{id}", materialHandler.Get).Methods("GET")
	api.HandleFunc("/materials/{id}", materialHandler.Retire).Methods("DELETE")

	api.HandleFunc("/materialtypes", referenceHandler.ListMaterialTypes).Methods("GET")
	api.HandleFunc("/genres", referenceHandler.ListGenres).Methods("GET")

	api.HandleFunc("/patrons", patronHandler.List).Methods("GET")
	api.HandleFunc("/patrons/{id}", patronHandler.Get).Methods("GET")
	api.HandleFunc("/patrons/{id}", patronHandler.UpdateContact).Methods("PUT")
	api.HandleFunc("/patrons/{id}/edit-active-status", patronHandler.ToggleActive).Methods("PUT")

	api.HandleFunc("/checkouts", checkoutHandler.Create).Methods("POST")
	api.HandleFunc("/checkouts", checkoutHandler.List).Methods("GET")
	api.HandleFunc("/checkouts/overdue", checkoutHandler.ListOverdue).Methods("GET")
	api.HandleFunc("/checkouts/{id}/return", checkoutHandler.Return).Methods("PUT")

	return router
}
