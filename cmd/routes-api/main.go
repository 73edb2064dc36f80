package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trailmark/routes-backend/internal/config"
	"github.com/trailmark/routes-backend/internal/domain/bookmark"
	"github.com/trailmark/routes-backend/internal/domain/category"
	"github.com/trailmark/routes-backend/internal/domain/route"
	"github.com/trailmark/routes-backend/internal/middleware"
	"github.com/trailmark/routes-backend/internal/pkg/database"
	"github.com/trailmark/routes-backend/internal/pkg/jwt"
	"github.com/trailmark/routes-backend/internal/pkg/queue"
	pkgresponse "github.com/trailmark/routes-backend/internal/pkg/response"
	"github.com/trailmark/routes-backend/internal/realtime"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting routes API")

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMaxIdleConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	q, err := queue.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer q.Close()

	if err := q.EnsureStream(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure PHOTOS stream")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	routeRepo := route.NewRepository(db)
	routeService := route.NewService(routeRepo, q)
	routeHandler := route.NewHandler(routeService)

	bookmarkRepo := bookmark.NewRepository(db)
	bookmarkService := bookmark.NewService(bookmarkRepo, routeRepo)
	bookmarkHandler := bookmark.NewHandler(bookmarkService)

	categoryRepo := category.NewRepository(db)
	categoryService := category.NewService(categoryRepo)
	categoryHandler := category.NewHandler(categoryService)

	hub := realtime.NewHub()
	if err := realtime.StartCompletionRelay(q, hub); err != nil {
		log.Fatal().Err(err).Msg("Failed to start realtime completion relay")
	}
	realtimeHandler := realtime.NewHandler(hub, jwtService, routeService, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/routes/ws/{routeId}", realtimeHandler.Serve)
		r.Mount("/routes", routeHandler.Routes(authMiddleware, bookmarkHandler))
		r.Mount("/bookmarks", bookmarkHandler.Routes(authMiddleware))
		r.Mount("/categories", categoryHandler.Routes(authMiddleware))
	})

	rootHandler := middleware.Logger(middleware.Recover(r))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
