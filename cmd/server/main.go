package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"idbridge/internal/access"
	"idbridge/internal/facade"
	"idbridge/internal/identitylink"
	jwttoken "idbridge/internal/jwt_token"
	"idbridge/internal/mapping"
	"idbridge/internal/pipeline"
	"idbridge/internal/platform/config"
	"idbridge/internal/platform/httpserver"
	"idbridge/internal/platform/logger"
	"idbridge/internal/platform/metrics"
	"idbridge/internal/providers"
	httptransport "idbridge/internal/transport/http"
	"idbridge/internal/userinfo"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("idbridge stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	providerRegistry, err := infra.providerRegistry(cfg.Providers.Registry)
	if err != nil {
		return err
	}
	if err := providers.Seed(ctx, providerRegistry, cfg.Providers.Seed); err != nil {
		return fmt.Errorf("seed providers: %w", err)
	}

	permissions, err := access.NewCasbinRegistryFromFile(cfg.Access.PolicyFile)
	if err != nil {
		return fmt.Errorf("load access policy: %w", err)
	}
	gate, err := access.New(permissions, access.WithLogger(log), access.WithMetrics(m))
	if err != nil {
		return err
	}

	consumer, err := pipeline.NewConsumer(infra.mappings, infra.logs, gate,
		pipeline.WithConsumerLogger(log),
		pipeline.WithConsumerMetrics(m),
		pipeline.WithTxRunner(infra.tx),
	)
	if err != nil {
		return err
	}

	events, err := openBus(ctx, cfg.Events, consumer.Router(), log)
	if err != nil {
		return err
	}
	defer events.close()

	publisher, err := pipeline.NewPublisher(events.bus, gate, infra.limits,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	identity, err := userinfo.NewClient(cfg.Identity.UserInfoURL,
		userinfo.WithLogger(log),
		userinfo.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	service, err := identitylink.NewService(publisher, infra.mappings, gate, identity,
		identitylink.WithLogger(log),
		identitylink.WithSessionCookie(cfg.Identity.SessionCookie),
	)
	if err != nil {
		return err
	}
	dispatcher, err := facade.New(service, facade.WithLogger(log), facade.WithMetrics(m))
	if err != nil {
		return err
	}
	mappingService := mapping.NewService(infra.mappings, providerRegistry, gate, mapping.WithLogger(log))

	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	router := httptransport.NewRouter(
		httptransport.NewOperationsHandler(dispatcher, log),
		httptransport.NewMappingsHandler(mappingService, log),
		jwttoken.NewJWTServiceAdapter(tokens),
		reg,
		log,
	)
	srv := httpserver.New(cfg.Server.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	for _, worker := range events.workers {
		worker := worker
		g.Go(func() error {
			return worker(gctx)
		})
	}
	g.Go(func() error {
		log.Info("starting idbridge", "addr", cfg.Server.Addr, "event_bus", cfg.Events.Bus)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
