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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"resto-order-go/config"
	"resto-order-go/events"
	"resto-order-go/handlers"
	"resto-order-go/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {

	/* STORAGE SETUP STARTS */

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}

	seeded, err := storage.SeedMenu(ctx, store, storage.SampleMenu)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d menu items", seeded)

	if _, err := storage.SeedUser(ctx, store, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}
	/* STORAGE SETUP ENDS */

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Failed to close event publisher: %v", err)
		}
	}()

	/* ROUTING STARTS */

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(store,
		handlers.WithPublisher(publisher),
		handlers.WithLocation(cfg.Location),
	)
	router := handlers.NewRouter(h, cors.New(corsConfig(cfg)))
	/* ROUTING ENDS */

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		uri := cfg.DatabaseURI
		if uri == "" {
			uri = storage.DefaultSQLiteURI
			log.Println("Warning: DATABASE_URI not set. Using in-memory SQLite: " + uri)
		}
		db, err := storage.OpenSQLite(uri)
		if err != nil {
			return nil, err
		}
		return storage.NewGormStorage(db), nil
	default:
		return storage.NewMemStorage(), nil
	}
}

func openPublisher(cfg config.Config) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("KAFKA_BROKERS not set. Order events are not published.")
		return events.NopPublisher{}, nil
	}

	producer, err := events.DialKafka(cfg.KafkaBrokers, cfg.KafkaTimeout, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	return events.NewKafkaPublisher(producer, cfg.KafkaTopic), nil
}

func corsConfig(cfg config.Config) cors.Config {
	if cfg.Development() || len(cfg.CORSOrigins) == 0 {
		// Development: Allow all origins
		return cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", handlers.RequestIDHeader},
			ExposeHeaders:   []string{"Content-Length", handlers.RequestIDHeader},
			MaxAge:          12 * time.Hour,
		}
	}

	return cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handlers.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", handlers.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
