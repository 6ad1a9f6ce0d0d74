package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ardhi/internal/activity"
	"ardhi/internal/auth"
	"ardhi/internal/document"
	"ardhi/internal/platform/config"
	"ardhi/internal/platform/httpserver"
	"ardhi/internal/platform/logger"
	"ardhi/internal/platform/metrics"
	"ardhi/internal/platform/postgres"
	"ardhi/internal/platform/redis"
	"ardhi/internal/property"
	"ardhi/internal/transfer"
	httptransport "ardhi/internal/transport/http"
	"ardhi/internal/user"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and runs the two servers (API and metrics).
// Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	rc, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rc != nil {
		defer func() { _ = rc.Close() }()
	}

	var (
		userStore     user.Store
		propertyStore property.Store
		documentStore document.Store
		transferStore transfer.Store
		activityStore activity.Store
	)
	if db != nil {
		userStore = user.NewPostgres(db)
		propertyStore = property.NewPostgres(db)
		documentStore = document.NewPostgres(db)
		transferStore = transfer.NewPostgres(db)
		activityStore = activity.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		userStore = user.NewInMemoryStore()
		propertyStore = property.NewInMemoryStore()
		documentStore = document.NewInMemoryStore()
		transferStore = transfer.NewInMemoryStore()
		activityStore = activity.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	activityOpts := []activity.Option{activity.WithMetrics(m)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := activity.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaActivityTopic, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		activityOpts = append(activityOpts, activity.WithPublisher(publisher))
		log.Info("activity broker fan-out enabled", "topic", cfg.KafkaActivityTopic)
	}
	activities := activity.NewService(activityStore, log, activityOpts...)

	users := user.New(userStore,
		user.WithActivity(activities),
		user.WithLogger(log),
	)

	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL)
	authSvc := auth.New(users, tokens,
		auth.WithActivity(activities),
		auth.WithLogger(log),
	)

	statsCache := property.NewStatsCache(rc, cfg.StatsCacheTTL, log)
	properties := property.New(propertyStore, documentStore, users,
		property.WithActivity(activities),
		property.WithTransferGuard(transferStore),
		property.WithStatsCache(statsCache),
		property.WithLogger(log),
		property.WithMetrics(m),
	)

	documents := document.New(documentStore, properties, users,
		document.WithActivity(activities),
		document.WithLogger(log),
		document.WithMetrics(m),
	)

	transfers := transfer.New(transferStore, properties, users,
		transfer.WithActivity(activities),
		transfer.WithLogger(log),
		transfer.WithMetrics(m),
	)

	router := httptransport.NewRouter(log, m, tokens, httptransport.Handlers{
		Auth:       httptransport.NewAuthHandler(authSvc, users, int64(cfg.TokenTTL.Seconds())),
		Properties: httptransport.NewPropertyHandler(properties, documents),
		Documents:  httptransport.NewDocumentHandler(documents),
		Transfers:  httptransport.NewTransferHandler(transfers),
		Activity:   httptransport.NewActivityHandler(activities),
		Admin:      httptransport.NewAdminHandler(users),
	})

	apiServer := httpserver.New(cfg.Addr, router)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := httpserver.New(cfg.MetricsAddr, metricsMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting api server", "addr", cfg.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting metrics server", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := apiServer.Shutdown(shutdownCtx)
		if merr := metricsServer.Shutdown(shutdownCtx); err == nil {
			err = merr
		}
		return err
	})

	return g.Wait()
}
