package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"didweb-anoncreds/internal/anoncreds/endpoint"
	"didweb-anoncreds/internal/anoncreds/fetcher"
	anoncredshandler "didweb-anoncreds/internal/anoncreds/handler"
	"didweb-anoncreds/internal/anoncreds/registry"
	registrymetrics "didweb-anoncreds/internal/anoncreds/registry/metrics"
	"didweb-anoncreds/internal/anoncreds/registry/sequence"
	"didweb-anoncreds/internal/dids"
	"didweb-anoncreds/internal/hosting"
	"didweb-anoncreds/internal/hosting/events"
	hostingmetrics "didweb-anoncreds/internal/hosting/metrics"
	hostingmodels "didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/internal/hosting/service"
	"didweb-anoncreds/internal/hosting/store"
	jwttoken "didweb-anoncreds/internal/jwt_token"
	"didweb-anoncreds/internal/platform/config"
	"didweb-anoncreds/internal/platform/httpclient"
	"didweb-anoncreds/internal/platform/httpserver"
	"didweb-anoncreds/internal/platform/logger"
	"didweb-anoncreds/internal/platform/metrics"
	"didweb-anoncreds/internal/platform/postgres"
	platformredis "didweb-anoncreds/internal/platform/redis"
	"didweb-anoncreds/pkg/platform/httputil"
)

const eventQueueSize = 256

// main wires the registry and the resource host behind one router. Optional
// backends (Postgres, Redis, Kafka) fall back to in-process implementations
// when not configured.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	checks := map[string]func(context.Context) error{}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	var hostStore service.Store = store.NewMemory()
	if db != nil {
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
		hostStore = store.NewPostgres(db)
		checks["postgres"] = db.PingContext
		log.Info("using postgres resource store")
	} else {
		log.Warn("ANONCREDS_DATABASE_URL not set, resources are kept in memory")
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var (
		docCache  dids.DocumentCache        = dids.NewMemoryCache()
		sequencer registry.VersionSequencer = sequence.NewMemory()
	)
	if redisClient != nil {
		defer redisClient.Close()
		docCache = dids.NewRedisCache(redisClient.Client)
		sequencer = sequence.NewRedis(redisClient.Client)
		checks["redis"] = redisClient.Health
		log.Info("using redis for DID document cache and status list sequencing")
	}

	sink, closeSink, err := eventSink(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeSink()
	if health, ok := sink.(interface{ Health(context.Context) error }); ok {
		checks["kafka"] = health.Health
	}
	queue := make(chan hostingmodels.ResourcePublished, eventQueueSize)
	worker := events.NewWorker(sink, queue, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("event worker stopped", "error", err)
		}
	}()

	client := httpclient.New(
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithLogger(log),
	)
	webOpts := []dids.WebOption{dids.WithWebLogger(log)}
	if cfg.InsecureDIDResolution {
		webOpts = append(webOpts, dids.WithInsecureHTTP())
	}
	documents := dids.NewCachingResolver(
		dids.NewWebResolver(client, webOpts...),
		docCache,
		dids.WithTTL(cfg.DIDCacheTTL),
		dids.WithCacheLogger(log),
	)
	reg := registry.New(
		fetcher.New(endpoint.NewResolver(documents), client, fetcher.WithLogger(log)),
		registry.WithServiceName(cfg.ServiceName),
		registry.WithSequencer(sequencer),
		registry.WithLogger(log),
		registry.WithMetrics(registrymetrics.New()),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	hostService := hosting.NewService(hostStore, cfg.PublicBaseURL,
		service.WithLogger(log),
		service.WithEventPublisher(events.NewPublisher(events.NewQueueSink(queue))),
		service.WithMetrics(hostingmetrics.New()),
	)

	httpMetrics := metrics.New()
	router := chi.NewRouter()
	router.Use(httpMetrics.LatencyMiddleware)
	router.Get("/health", healthHandler(checks))
	router.Handle("/metrics", metrics.Handler())
	anoncredshandler.New(reg, log).Register(router)
	hosting.NewHandler(hostService, jwttoken.NewJWTServiceAdapter(jwtService), log).Register(router)

	srv := httpserver.New(cfg.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting didweb-anoncreds", "addr", cfg.Addr, "public_base_url", cfg.PublicBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-workerDone
	return nil
}

func eventSink(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (events.Sink, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Warn("ANONCREDS_KAFKA_BROKERS not set, publish events are only logged")
		return events.NewLogSink(log), func() {}, nil
	}
	sink, err := events.NewKafkaSink(ctx, cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing events to kafka", "topic", cfg.Topic)
	return sink, sink.Close, nil
}

func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
