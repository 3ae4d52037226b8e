// Package app assembles the listing data-access layer from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	redisCache "github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/cache/redis"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/gateway/memory"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/gateway/mongodb"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/identity"
	redisLedger "github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/ledger/redis"
	natsAdapter "github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/config"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/query"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/transform"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	Listings  *usecase.ListingUsecase
	Favorites *usecase.FavoriteUsecase
	Images    *usecase.ImageCoordinator
	Sweeper   *usecase.Sweeper
	Identity  *identity.JWTProvider
	Metrics   *metrics.Manager

	closers []func(context.Context) error
	logger  *logger.Logger
}

// New connects every adapter named by cfg. On failure the adapters opened so
// far are closed before returning.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	a := &App{Metrics: metrics.NewManager("rental_listing"), logger: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	gateway, err := a.gateway(ctx, cfg)
	if err != nil {
		return nil, err
	}
	engine := query.NewEngine(gateway, cfg.Listing.DefaultPageSize)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Address, err)
	}
	log.Info("Connected to Redis", zap.String("address", cfg.Redis.Address))

	var listings usecase.ListingStore = engine
	if cfg.Listing.CacheTTL > 0 {
		listings = redisCache.NewListingCache(engine, rdb, cfg.Listing.CacheTTL, log)
	}

	storage, err := s3.NewS3Storage(ctx, cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	log.Info("Object storage initialized", zap.String("bucket", cfg.MinIO.Bucket))

	ledger := redisLedger.NewAssetLedgerFromClient(rdb)

	var events domain.EventPublisher
	if cfg.NATS.URL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATS.URL, cfg.NATS.ConnectTimeout, log, cfg.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { publisher.Close(); return nil })
		events = publisher
		log.Info("NATS publisher initialized", zap.String("url", cfg.NATS.URL))
	} else {
		log.Info("NATS url not set, lifecycle events are disabled")
	}

	a.Images = usecase.NewImageCoordinator(storage, ledger, usecase.ImageConfig{
		Root:          cfg.Storage.Root,
		ImagePrefix:   cfg.Storage.ImagePrefix,
		MaxImageBytes: cfg.Storage.MaxImageBytes,
		AllowedTypes:  cfg.Storage.AllowedTypes,
		SignedURLTTL:  cfg.Storage.SignedURLTTL,
		UploadWorkers: cfg.Listing.UploadWorkers,
		StepRetries:   cfg.Storage.StepRetries,
		RetryInterval: cfg.Storage.RetryInterval,
	}, a.Metrics, log)
	a.Listings = usecase.NewListingUsecase(listings, a.Images, transform.New(cfg.Listing.DefaultNoticePeriod), events, a.Metrics, log)
	a.Favorites = usecase.NewFavoriteUsecase(engine, events, a.Metrics, log)
	a.Sweeper = usecase.NewSweeper(storage, ledger, a.Images, engine, a.Metrics, log)
	a.Identity = identity.NewJWTProvider(cfg.Auth.JWTSecret, log)
	return a, nil
}

func (a *App) gateway(ctx context.Context, cfg *config.Config) (domain.Gateway, error) {
	if cfg.Gateway.Driver == "memory" {
		a.logger.Warn("Using the in-memory gateway, data is lost on exit")
		return memory.NewGateway(), nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, client.Disconnect)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	a.logger.Info("Successfully connected and pinged MongoDB", zap.String("database", cfg.Mongo.Database))

	g := mongodb.NewGateway(client.Database(cfg.Mongo.Database), a.logger)
	if err := g.EnsureIndexes(ctx); err != nil {
		// Indexes may already exist or be managed outside the service.
		a.logger.Error("Failed to ensure gateway indexes", zap.Error(err))
	}
	return g, nil
}

// Close releases adapters in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
