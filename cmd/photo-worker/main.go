package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/trailmark/routes-backend/internal/config"
	"github.com/trailmark/routes-backend/internal/domain/route"
	"github.com/trailmark/routes-backend/internal/pkg/database"
	"github.com/trailmark/routes-backend/internal/pkg/imaging"
	"github.com/trailmark/routes-backend/internal/pkg/queue"
	"github.com/trailmark/routes-backend/internal/pkg/storage"
	"github.com/trailmark/routes-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().Msg("Starting photo-worker")

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
	if err := q.EnsureConsumer(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure photo-worker consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewS3Storage(ctx, storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		Region:    cfg.MinioRegion,
		Bucket:    cfg.MinioBucket,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.PhotoBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object storage client")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap object storage bucket")
	}

	routeRepo := route.NewRepository(db)
	processor := imaging.NewProcessor(imaging.Config{
		MaxWidth:       cfg.PhotoMaxWidth,
		Quality:        cfg.PhotoQuality,
		ThumbnailWidth: cfg.ThumbnailWidth,
	})

	w := worker.New(q, routeRepo, store, processor)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-sigChan:
			log.Info().Msg("Shutdown signal received")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		return w.Run(gctx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("photo-worker stopped with error")
	}
	log.Info().Msg("photo-worker stopped")
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
