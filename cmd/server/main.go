package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"jobmatch/internal/config"
	"jobmatch/internal/db"
	"jobmatch/internal/directory"
	"jobmatch/internal/identity"
	"jobmatch/internal/messaging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)

	// Platform layer: postgres + redis.
	database, err := db.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	if err := database.AutoMigrate(); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("database schema initialized")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	// Party directory with a redis read-through cache in front.
	parties := directory.NewCachedDirectory(
		directory.NewPostgresDirectory(database.Conn),
		redisClient, cfg.DirectoryCacheTTL, log,
	)

	// Messaging core.
	store := messaging.NewPostgresStore(database.Conn, cfg.LimitMessages)

	hub := messaging.NewHub(redisClient, log)
	ctx := context.Background()
	go hub.Run(ctx)
	go hub.Subscribe(ctx)

	service := messaging.NewService(store, store, parties, hub, log)
	handler := messaging.NewHandler(service, hub, log)

	verifier := identity.NewJWTVerifier(cfg.JWTSecret)
	authMiddleware := identity.NewAuthMiddleware(verifier)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Everything else requires an identity from the platform's provider.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)

		r.Get("/api/rooms", handler.ListRooms)
		r.Get("/api/rooms/{roomID}/messages", handler.GetMessages)
		r.Post("/api/rooms/{roomID}/messages", handler.PostMessage)

		// Activity hints (optional early sync trigger; polling still rules).
		r.Get("/ws", handler.ServeWS)
	})

	log.Info("server starting", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
