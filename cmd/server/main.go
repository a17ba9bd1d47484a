package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/buriane/taghiane/internal/auth"
	"github.com/buriane/taghiane/internal/config"
	"github.com/buriane/taghiane/internal/export"
	"github.com/buriane/taghiane/internal/middleware"
	"github.com/buriane/taghiane/internal/obs"
	"github.com/buriane/taghiane/internal/ocr"
	"github.com/buriane/taghiane/internal/service"
	"github.com/buriane/taghiane/internal/session"
	"github.com/buriane/taghiane/internal/storage"
	"github.com/buriane/taghiane/internal/storage/postgres"
	"github.com/buriane/taghiane/internal/storage/sqlite"
	"github.com/buriane/taghiane/internal/web"
	"github.com/buriane/taghiane/pkg/logging"
)

const serviceName = "taghiane"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Attrs:  []slog.Attr{slog.String("service", serviceName), slog.String("env", cfg.AppEnv)},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.OTelEndpoint,
			SamplingRatio: cfg.OTelSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error("Failed to initialise tracing", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("Failed to shut down tracer", "error", err)
				}
			}()
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to parse redis url", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	if cfg.OTelEnabled {
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			logger.Error("Failed to instrument redis tracing", "error", err)
		}
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not reachable at startup", "error", err)
	}
	drafts := session.NewRedisStore(rdb, cfg.DraftTTL)

	var scanner ocr.Extractor
	if cfg.OCRURL != "" {
		scanner = ocr.NewHTTPExtractor(ocr.Config{
			URL:            cfg.OCRURL,
			APIKey:         cfg.OCRAPIKey,
			Timeout:        cfg.OCRTimeout,
			MaxConcurrency: cfg.OCRMaxConcurrency,
			MaxImageBytes:  cfg.OCRMaxImageBytes,
		}, nil)
	} else {
		logger.Warn("OCR_URL not set; receipt scanning disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics := obs.NewDomainMetrics(cfg.MetricsNamespace, reg)
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, reg)

	scanLimiter, err := web.NewScanLimiter(rdb, cfg.ScanRateLimit)
	if err != nil {
		logger.Error("Failed to configure scan rate limit", "error", err)
		os.Exit(1)
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, auth.WithIssuer(cfg.JWTIssuer), auth.WithLeeway(cfg.JWTLeeway))
	logInterceptor := middleware.LoggingInterceptor(logger, domainMetrics)

	billSvc := service.NewBillService(store, domainMetrics)
	draftSvc := service.NewDraftService(drafts, scanner, billSvc, domainMetrics)

	staticPath := cfg.StaticPath
	if staticPath != "" {
		if staticPath, err = filepath.Abs(staticPath); err != nil {
			logger.Error("Failed to resolve static path", "error", err)
			os.Exit(1)
		}
		logger.Info("Serving static files", "path", staticPath)
	}

	router := web.NewRouter(web.Options{
		Logger: logger,

		Bills: billSvc,
		BillOptions: []connect.HandlerOption{
			connect.WithInterceptors(middleware.OptionalAuth(verifier), logInterceptor),
		},
		Drafts: draftSvc,
		DraftOptions: []connect.HandlerOption{
			connect.WithInterceptors(middleware.RequireAuth(verifier), logInterceptor),
			connect.WithReadMaxBytes(int(cfg.OCRMaxImageBytes) * 2),
		},

		Export: web.BillExport{
			Store:   store,
			Printer: export.PDFPrinter{ChromePath: cfg.ChromePath, Timeout: 30 * time.Second},
		},
		Health: web.Health{Checks: []web.Check{
			{Name: "db", Ping: store.Ping},
			{Name: "redis", Ping: drafts.Ping, Timeout: 300 * time.Millisecond},
		}},

		HTTPMetrics: httpMetrics,
		Gatherer:    reg,
		ScanLimiter: scanLimiter,

		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StaticPath:         staticPath,
	})

	var handler http.Handler = router
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, serviceName)
	}

	// h2c serves HTTP/2 without TLS for gRPC-compatible Connect clients.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("Connect server starting", "address", srv.Addr, "env", cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return postgres.New(connectCtx, postgres.Config{
			DatabaseURL:     cfg.DatabaseURL,
			ApplicationName: serviceName,
			Tracer:          obs.NewPGXTracer(nil),
		})
	default:
		return sqlite.New(cfg.DBPath)
	}
}
