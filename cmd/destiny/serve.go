package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/robark/destiny-matrix/internal/api"
	"github.com/robark/destiny-matrix/internal/api/middleware"
	"github.com/robark/destiny-matrix/internal/core/ports"
	"github.com/robark/destiny-matrix/internal/core/service"
	"github.com/robark/destiny-matrix/internal/infrastructure/db/mongo"
	"github.com/robark/destiny-matrix/internal/infrastructure/db/redis"
	"github.com/robark/destiny-matrix/internal/infrastructure/gemini"
	"github.com/robark/destiny-matrix/internal/infrastructure/platform"
	"github.com/robark/destiny-matrix/internal/infrastructure/queue"
	"github.com/robark/destiny-matrix/internal/pkg/config"
	"github.com/robark/destiny-matrix/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Dir:    cfg.LogDir,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	httpClient := platform.NewHTTPClient()

	gen, err := gemini.New(ctx, gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		BaseURL:    cfg.Gemini.BaseURL,
		Timeout:    cfg.Gemini.Timeout,
		HTTPClient: httpClient,
	})
	if err != nil {
		log.Error().Err(err).Msg("gemini client unavailable")
		return err
	}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			return err
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	var (
		db      *gomongo.Database
		journal ports.AnalysisJournal
	)
	if cfg.Mongo.URI != "" {
		client, database, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Error().Err(err).Msg("mongo connection failed")
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		db = database

		repo := mongo.NewAnalysisRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("analysis indexes not created")
		}

		dispatcher := queue.NewDispatcher(cfg.Mongo.Workers, repo, log)
		dispatcher.Start(context.WithoutCancel(ctx))
		defer dispatcher.Close()
		journal = dispatcher
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.Mongo.Workers).Msg("analysis journal enabled")
	}

	pc := platform.NewClient(platform.Config{
		BaseURL:    cfg.Platform.BaseURL,
		Timeout:    cfg.Platform.Timeout,
		HTTPClient: httpClient,
	}, log)

	router := api.NewRouter(api.Dependencies{
		Log:            log,
		Auth:           pc,
		Orders:         pc,
		Analysis:       service.NewAnalysisService(gen, journal, log),
		Limiter:        rateLimiter(cfg, rdb, log),
		ServiceName:    cfg.Platform.ServiceName,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodySize:    cfg.MaxBodySize,
		Mongo:          db,
		Redis:          rdb,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// rateLimiter picks the shared Redis limiter when Redis is configured and
// the in-process one otherwise. A zero limit disables the stage.
func rateLimiter(cfg *config.Config, rdb *goredis.Client, log zerolog.Logger) ports.RateLimiter {
	perMinute := cfg.RateLimit.PerMinute
	switch {
	case perMinute == 0:
		log.Warn().Msg("rate limiting disabled")
		return nil
	case rdb != nil:
		return redis.NewRateLimiter(rdb, perMinute, time.Minute)
	default:
		return middleware.NewMemoryRateLimiter(perMinute)
	}
}
