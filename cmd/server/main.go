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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/snooker/internal/api"
	"github.com/playmatatu/snooker/internal/api/handlers"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/database"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/migrations"
	"github.com/playmatatu/snooker/internal/redis"
	"github.com/playmatatu/snooker/internal/ws"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shot journal (optional)
	var journal game.ShotJournal
	var history handlers.ShotHistory
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		j := database.NewJournal(db)
		journal, history = j, j
		log.Println("[DB] Shot journal enabled")
	} else {
		log.Println("[DB] DATABASE_URL not set, shot journal disabled")
	}

	hub := ws.NewHub()
	var sink game.EventSink = hub

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	// Redis fan-out and snapshot cache (optional)
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rdb = client

		if err := ws.StartEventRelay(ctx, rdb, hub); err != nil {
			log.Fatalf("Failed to start event relay: %v", err)
		}
		redisSink := ws.NewRedisSink(hub, rdb)
		g.Go(func() error {
			redisSink.Run(ctx)
			return nil
		})
		sink = redisSink
		log.Println("[REDIS] Event fan-out enabled")
	} else {
		log.Println("[REDIS] REDIS_URL not set, events delivered in-process")
	}

	pm := game.NewPracticeManager(cfg, rdb, sink, journal)
	pm.StartIdleReaper(ctx, time.Minute, time.Duration(cfg.SessionTimeoutMin)*time.Minute)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, pm, hub, history, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Printf("Starting snooker practice server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		pm.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
