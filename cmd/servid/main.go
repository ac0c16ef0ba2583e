package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	leads "github.com/phbpx/leads-api"
	"github.com/phbpx/leads-api/birthdate"
	"github.com/phbpx/leads-api/handler"
	"github.com/phbpx/leads-api/metrics"
	"github.com/phbpx/leads-api/mongodb"
	"github.com/phbpx/leads-api/pkg/database"
	"github.com/phbpx/leads-api/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {

	log, err := newLog("leads-api")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run("leads-api", log); err != nil {
		log.Errorw("startup", "err", err)
		os.Exit(1)
	}
}

func run(serverName string, log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// A missing .env file is fine; the environment and defaults still apply.
	_ = godotenv.Load()

	cfg := struct {
		Http struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			Host            string        `conf:"default:0.0.0.0:3000"`
		}
		DB struct {
			Driver                 string        `conf:"default:mongo"`
			URL                    string        `conf:"default:mongodb://localhost:27017,mask"`
			Name                   string        `conf:"default:leads"`
			ServerSelectionTimeout time.Duration `conf:"default:5s"`
			User                   string        `conf:"default:leadsvc"`
			Password               string        `conf:"default:leadsvc,mask"`
			Host                   string        `conf:"default:localhost:5432"`
			MaxIdleConns           int           `conf:"default:0"`
			MaxOpenConns           int           `conf:"default:0"`
			DisableTLS             bool          `conf:"default:true"`
		}
		Enrich struct {
			URL     string        `conf:"default:https://dummyjson.com/users/1"`
			Timeout time.Duration `conf:"default:5s"`
		}
		Tracing struct {
			ReporterURI string  `conf:"default:localhost:4318"`
			ServiceName string  `conf:"default:leads-api"`
			Probability float64 `conf:"default:0.5"`
		}
	}{}

	help, err := conf.Parse("LEAD", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Database Support

	// Create connectivity to the database.
	log.Infow("startup", "status", "initializing database support", "driver", cfg.DB.Driver)

	store, err := storage.Open(storage.Config{
		Driver: cfg.DB.Driver,
		Mongo: mongodb.Config{
			URL:                    cfg.DB.URL,
			Name:                   cfg.DB.Name,
			ServerSelectionTimeout: cfg.DB.ServerSelectionTimeout,
		},
		Postgres: database.Config{
			User:         cfg.DB.User,
			Password:     cfg.DB.Password,
			Host:         cfg.DB.Host,
			Name:         cfg.DB.Name,
			MaxIdleConns: cfg.DB.MaxIdleConns,
			MaxOpenConns: cfg.DB.MaxOpenConns,
			DisableTLS:   cfg.DB.DisableTLS,
		},
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping database support", "driver", store.Driver)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Errorw("shutdown", "status", "closing database", "err", err)
		}
	}()

	// =========================================================================
	// Update database schema

	log.Infow("startup", "status", "updating database schema", "database", cfg.DB.Name, "driver", store.Driver)

	prepareCtx, cancelPrepare := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelPrepare()

	if err := store.Prepare(prepareCtx); err != nil {
		return fmt.Errorf("updating database schema: %w", err)
	}
	log.Infow("startup", "status", "database schema ready", "driver", store.Driver)

	// =========================================================================
	// Start Tracing Support

	log.Infow("startup", "status", "initializing OT tracing support", "reporter", cfg.Tracing.ReporterURI)

	traceProvider, err := startTracing(
		cfg.Tracing.ServiceName,
		cfg.Tracing.ReporterURI,
		cfg.Tracing.Probability,
	)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer traceProvider.Shutdown(context.Background())

	// =========================================================================
	// Create router

	log.Infow("startup", "status", "initializing router")

	otelLog := otelzap.New(log.Desugar(), otelzap.WithStackTrace(true)).Sugar()
	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	fetcher := birthdate.NewClient(cfg.Enrich.URL, cfg.Enrich.Timeout, otelLog, appMetrics)

	leadService, err := leads.NewService(store.Repository, fetcher, otelLog, leads.WithMetrics(appMetrics))
	if err != nil {
		return fmt.Errorf("creating lead service: %w", err)
	}

	leadHandler := handler.NewLeadHandler(leadService, otelLog)
	checkHandler := handler.NewCheckHandler(store.StatusCheck, otelLog)

	r := handler.NewRouter(serverName, leadHandler, checkHandler)
	r.Handle("/metrics", promhttp.Handler())

	// =========================================================================
	// Start API Server

	log.Infow("startup", "status", "initializing http server", "host", cfg.Http.Host)

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// The HTTP Server
	server := &http.Server{
		Addr:         cfg.Http.Host,
		Handler:      r,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		IdleTimeout:  cfg.Http.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func newLog(serviceName string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

func startTracing(serviceName, reporterURI string, probability float64) (*tracesdk.TracerProvider, error) {
	exp, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(reporterURI),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating new exporter: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(probability))),
		// Always be sure to batch in production.
		tracesdk.WithBatcher(exp,
			tracesdk.WithMaxExportBatchSize(tracesdk.DefaultMaxExportBatchSize),
			tracesdk.WithBatchTimeout(tracesdk.DefaultScheduleDelay*time.Millisecond),
		),
		// Record information about this application in a Resource.
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			attribute.String("exporter", "otlp"),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}
