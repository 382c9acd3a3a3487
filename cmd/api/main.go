// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/sync/errgroup"

	"locallens/internal/adapter/broker"
	"locallens/internal/adapter/cache"
	"locallens/internal/adapter/googlenews"
	"locallens/internal/adapter/newsapi"
	"locallens/internal/adapter/nominatim"
	"locallens/internal/adapter/reddit"
	"locallens/internal/adapter/storage"
	"locallens/internal/adapter/ticketmaster"
	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/logging"
	"locallens/internal/server"
	"locallens/internal/server/handlers"
	"locallens/internal/service/aggregation"
	"locallens/internal/service/posts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "locallens: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pipelineOpts []aggregation.Option
	pipelineOpts = append(pipelineOpts, aggregation.WithQueryInterval(cfg.Pipeline.QueryInterval))

	// Snapshot storage
	store, closeStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	if store != nil {
		pipelineOpts = append(pipelineOpts, aggregation.WithSnapshotStore(store))
	}

	// Event bus
	var subscriber handlers.Subscriber
	if cfg.NATS.Enabled {
		nc, err := broker.Connect(cfg.NATS, logger.WithPrefix("nats"))
		if err != nil {
			return err
		}
		defer nc.Close()

		pipelineOpts = append(pipelineOpts, aggregation.WithPublisher(broker.NewPublisher(nc, cfg.NATS.Subject, logger.WithPrefix("nats"))))
		subscriber = broker.NewSubscriber(nc)
	}

	// News upstreams
	newsClient := newsapi.NewClient(cfg.News, logger)
	if cfg.Cache.Enabled {
		responseCache, err := cache.NewResponseCacheWithURL(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("failed to configure cache: %w", err)
		}
		defer responseCache.Close()

		if err := responseCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, caching disabled", "err", err)
		} else {
			newsClient = newsClient.WithCache(responseCache)
		}
	}
	if cfg.News.GoogleNewsEnabled {
		pipelineOpts = append(pipelineOpts, aggregation.WithSupplementarySearch(googlenews.NewClient(cfg.News, logger)))
	}

	pipeline := aggregation.NewPipeline(newsClient, pipelineConfig(cfg.Pipeline), logger, pipelineOpts...)

	redditClient := reddit.NewClient(cfg.Reddit, logger)
	feed := posts.NewFeed(redditClient, posts.Config{
		PostLimit: cfg.Reddit.PostLimit,
		FeedCap:   cfg.Reddit.FeedCap,
	}, logger)

	var snapshots handlers.SnapshotLister
	if pipeline.HasSnapshotStore() {
		snapshots = pipeline
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		Aggregator:    pipeline,
		Snapshots:     snapshots,
		SnapshotLimit: cfg.Pipeline.SnapshotLimit,
		Feed:          feed,
		Posts:         redditClient,
		Events:        ticketmaster.NewClient(cfg.Events, logger),
		EventsConfig:  cfg.Events,
		Geocoder:      nominatim.NewGeocoder(cfg.Geo, logger),
		Subscriber:    subscriber,
		Logger:        logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port, "env", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// initStore opens the configured snapshot store. It returns a nil store when none is configured.
func initStore(ctx context.Context, cfg config.Config, logger *log.Logger) (content.SnapshotStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		store := storage.NewPostgresSnapshotStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		logger.Info("snapshot store ready", "driver", "postgres", "host", cfg.Database.Host)
		return store, db.Close, nil

	case config.StoreSQLite:
		store, err := storage.NewSQLiteSnapshotStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("snapshot store ready", "driver", "sqlite", "path", cfg.Store.SQLitePath)
		return store, func() { store.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

func pipelineConfig(cfg config.PipelineConfig) aggregation.Config {
	return aggregation.Config{
		DefaultPageSize:     cfg.DefaultPageSize,
		MaxPageSize:         cfg.MaxPageSize,
		CuratedSourceLimit:  cfg.CuratedSourceLimit,
		CuratedPageSize:     cfg.CuratedPageSize,
		QueryLimit:          cfg.QueryLimit,
		MaxQueries:          cfg.MaxQueries,
		QueryPageSize:       cfg.QueryPageSize,
		MinRelevance:        cfg.MinRelevance,
		MinCuratedRelevance: cfg.MinCuratedRelevance,
	}
}
