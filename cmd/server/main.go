package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/imposterparty/api/internal/auth"
	"github.com/imposterparty/api/internal/config"
	"github.com/imposterparty/api/internal/handler"
	"github.com/imposterparty/api/internal/logger"
	"github.com/imposterparty/api/internal/middleware"
	"github.com/imposterparty/api/internal/ratelimit"
	"github.com/imposterparty/api/internal/repository/postgres"
	"github.com/imposterparty/api/internal/service"
	"github.com/imposterparty/api/internal/store"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Msg("Config loaded")

	// Database. The game itself is fully in-memory; Postgres carries
	// accounts, friendships, invites, and game results.
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	friendRepo := postgres.NewFriendRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Rate limiter. Redis shares the counters across replicas; without it
	// the in-process limiter still protects a single instance.
	limiter := buildLimiter(cfg.RedisURL)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	// In-memory game state and WebSocket hub
	st := store.New()
	wsHub := handler.NewHub()

	// Services
	gameSvc := service.NewGameService(st, wsHub, statsRepo, cfg.Game, cfg.MinPlayers, cfg.MaxPlayers, rand.Float64)
	roomSvc := service.NewRoomService(st, wsHub, gameSvc, cfg.MinPlayers, cfg.MaxPlayers)
	presenceSvc := service.NewPresenceService(store.NewPresenceIndex(), friendRepo, wsHub)
	friendSvc := service.NewFriendService(st, wsHub, friendRepo, userRepo)
	orchestrator := service.NewOrchestrator(st, wsHub, limiter, roomSvc, gameSvc, presenceSvc, friendSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo)
	userHandler := handler.NewUserHandler(userRepo)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, orchestrator)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/guest", authHandler.GuestLogin)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes (registered accounts only)
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /users/me", userHandler.UpdateMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param; bad tokens degrade to guest)
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

// buildLimiter prefers Redis-backed windows and falls back to the
// in-process limiter when Redis is unreachable.
func buildLimiter(redisURL string) ratelimit.Limiter {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid Redis URL, using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(nil)
	}
	rdb := redis.NewClient(opts)
	limiter := ratelimit.NewRedisLimiter(rdb, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := limiter.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, using in-memory rate limiter")
		rdb.Close()
		return ratelimit.NewMemoryLimiter(nil)
	}
	log.Info().Msg("Redis rate limiter connected")
	return limiter
}
