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

	"golang.org/x/sync/errgroup"

	certhandler "chequeprint/internal/certified/handler"
	certmetrics "chequeprint/internal/certified/metrics"
	certservice "chequeprint/internal/certified/service"
	cbhandler "chequeprint/internal/checkbook/handler"
	"chequeprint/internal/checkbook/layout"
	cbmetrics "chequeprint/internal/checkbook/metrics"
	"chequeprint/internal/checkbook/printer"
	"chequeprint/internal/checkbook/printmodel"
	"chequeprint/internal/checkbook/reconcile"
	"chequeprint/internal/checkbook/render"
	cbservice "chequeprint/internal/checkbook/service"
	"chequeprint/internal/checkbook/soap"
	httpapi "chequeprint/internal/http"
	jwttoken "chequeprint/internal/jwt_token"
	"chequeprint/internal/outbox"
	"chequeprint/internal/platform/config"
	"chequeprint/internal/platform/httpserver"
	"chequeprint/internal/platform/kafka"
	"chequeprint/internal/platform/logger"
	"chequeprint/internal/platform/metrics"
	"chequeprint/pkg/platform/circuit"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chequeprint: %v\n", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until SIGINT/SIGTERM or a component fails.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	layoutCfg, err := layout.Load(cfg.LayoutFile)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := metrics.New()
	cbMetrics := cbmetrics.New(reg)
	certMetrics := certmetrics.New(reg)
	outboxMetrics := outbox.NewMetrics(reg)

	breaker := circuit.New("core_banking",
		circuit.WithFailureThreshold(cfg.CoreBanking.FailureThreshold),
		circuit.WithCooldown(cfg.CoreBanking.Cooldown),
	)
	if cfg.CoreBanking.SOAPURL == "" {
		log.Warn("CORE_BANKING_SOAP_URL is not set; checkbook queries will fail")
	}
	core := soap.New(cfg.CoreBanking.SOAPURL,
		soap.WithTimeout(cfg.CoreBanking.Timeout),
		soap.WithBreaker(breaker),
		soap.WithLogger(log),
		soap.WithMetrics(cbMetrics),
	)

	chequePrinter := printer.New(
		layout.NewResolver(layoutCfg, st.layouts),
		printmodel.New(layoutCfg, printmodel.WithLogger(log)),
		render.New(layoutCfg.MICRFont, layoutCfg.TextFont),
	)

	checkbooks := cbservice.New(
		core,
		st.printLogs,
		st.branches,
		reconcile.New(st.printLogs),
		chequePrinter,
		st.outbox,
		st.printTx,
		cbservice.WithLogger(log),
		cbservice.WithMetrics(cbMetrics),
	)
	certified := certservice.New(
		st.certified,
		st.certifiedTx,
		st.branches,
		chequePrinter,
		certservice.WithLogger(log),
		certservice.WithMetrics(certMetrics),
	)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Validator:      jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSigningKey)),
		DevOperatorID:  cfg.DevOperatorID,
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        reg.Handler(),
		Health:         st.health,
		Handlers: []httpapi.Registrar{
			cbhandler.New(checkbooks, log),
			certhandler.New(certified, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)

	producer, err := kafka.NewProducer(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		relay := outbox.NewRelay(st.outbox, producer,
			outbox.WithInterval(cfg.Kafka.RelayInterval),
			outbox.WithLogger(log),
			outbox.WithMetrics(outboxMetrics),
		)
		g.Go(func() error {
			return relay.Run(gctx)
		})
	} else {
		log.Info("KAFKA_BROKERS is not set; outbox events stay unpublished")
	}

	g.Go(func() error {
		log.Info("starting chequeprint", "addr", cfg.Addr, "storage", st.kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
