// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages; everything here is assembly.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"veriflow/internal/attribute"
	"veriflow/internal/audit"
	"veriflow/internal/jwttoken"
	"veriflow/internal/platform/config"
	"veriflow/internal/platform/health"
	"veriflow/internal/platform/httpserver"
	"veriflow/internal/platform/logger"
	"veriflow/internal/platform/postgres"
	"veriflow/internal/platform/redis"
	providerhandler "veriflow/internal/provider/handler"
	"veriflow/internal/provider/onfido"
	providerservice "veriflow/internal/provider/service"
	providerstore "veriflow/internal/provider/store"
	verificationhandler "veriflow/internal/verification/handler"
	"veriflow/internal/verification/lock"
	"veriflow/internal/verification/metrics"
	verificationservice "veriflow/internal/verification/service"
	verificationstore "veriflow/internal/verification/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	cache, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	// Stores fall back to in-memory implementations when the backing
	// service is not configured; useful for local development only.
	var (
		claims     verificationservice.ClaimStore     = verificationstore.NewMemory()
		providers  providerservice.Store              = providerstore.NewMemory()
		attributes verificationservice.AttributeStore = attribute.NewMemory()
		locker     verificationservice.Locker         = lock.NewMemory()
	)
	if db != nil {
		claims = verificationstore.NewPostgres(db)
		providers = providerstore.NewPostgres(db)
		attributes = attribute.NewPostgres(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
	}
	if cache != nil {
		locker = lock.NewRedis(cache)
	} else {
		log.Warn("redis not configured, initiation lock is process-local")
	}

	verificationMetrics := metrics.New()

	auditPublisher := audit.NewPublisher(256,
		audit.WithPublisherLogger(log),
		audit.WithDropCounter(verificationMetrics.IncrementAuditDropped),
	)
	var auditSink audit.Sink = audit.LogSink{Logger: log}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka audit sink failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditSink = kafkaSink
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "veriflow")
	validator := jwttoken.NewMiddlewareAdapter(tokens)

	providerSvc := providerservice.New(providers,
		providerservice.WithLogger(log),
		providerservice.WithAuditPublisher(auditPublisher),
	)
	verificationSvc := verificationservice.New(providers, attributes, claims, onfido.NewClient(), locker,
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(verificationMetrics),
		verificationservice.WithAuditPublisher(auditPublisher),
		verificationservice.WithLockTTL(config.InitiationLockTTL),
	)

	router := chi.NewRouter()
	verificationhandler.New(verificationSvc, log, validator).Register(router)
	providerhandler.New(providerSvc, log, cfg.AdminTokenHash).Register(router)
	router.Get("/healthz", health.Handler(db, cache))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting veriflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := audit.NewWorker(auditSink, auditPublisher.Events(), log).Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
