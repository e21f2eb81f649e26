package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Roi-salemm/lunaris/internal/app"
	"github.com/Roi-salemm/lunaris/internal/config"
	httpapp "github.com/Roi-salemm/lunaris/internal/http"
	"github.com/Roi-salemm/lunaris/internal/logger"
	"github.com/Roi-salemm/lunaris/internal/source"
	"github.com/Roi-salemm/lunaris/internal/store"
	"github.com/Roi-salemm/lunaris/internal/worker"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Remote ephemeris source
	provider := source.NewClient(cfg.EphemerisURL)

	// Services
	settingsRepo := store.NewSettingsRepo(db)
	syncService := app.NewSyncService(db, settingsRepo, provider, appLogger.WithComponent("sync"))
	snapshotService := app.NewSnapshotService(db)
	cardService := app.NewCardService(db, appLogger.WithComponent("cards"))

	// Background sync scheduler
	w := worker.NewWorker(syncService, cardService, cfg.SyncInterval, appLogger)
	w.Start()
	defer w.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := httpapp.NewHandler(syncService, snapshotService, cardService, db, appLogger.WithComponent("http"))
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
