// Package web assembles the HTTP surface: Connect services, health probes,
// metrics, bill exports and the static frontend.
package web

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/buriane/taghiane/internal/obs"
	"github.com/buriane/taghiane/pkg/api/apiconnect"
)

// Options wires the router.
type Options struct {
	Logger *slog.Logger

	Bills        apiconnect.BillServiceHandler
	BillOptions  []connect.HandlerOption
	Drafts       apiconnect.DraftServiceHandler
	DraftOptions []connect.HandlerOption

	Export BillExport
	Health Health

	HTTPMetrics *obs.HTTPMetrics
	Gatherer    prometheus.Gatherer

	// ScanLimiter, when set, rate-limits DraftService/Scan per client.
	ScanLimiter *limiter.Limiter

	CORSAllowedOrigins []string
	StaticPath         string
}

// NewRouter builds the application's HTTP handler.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: opts.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: opts.Logger}.Middleware)

	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			"Connect-Protocol-Version", "Connect-Timeout-Ms",
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", opts.Health.Live)
	r.Get("/readyz", opts.Health.Ready)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.Export.Store != nil {
		r.Get("/bills/{billID}/export.html", opts.Export.HTML)
		r.Get("/bills/{billID}/export.pdf", opts.Export.PDF)
	}

	if opts.Bills != nil {
		path, h := apiconnect.NewBillServiceHandler(opts.Bills, opts.BillOptions...)
		r.Handle(path+"*", h)
	}
	if opts.Drafts != nil {
		path, h := apiconnect.NewDraftServiceHandler(opts.Drafts, opts.DraftOptions...)
		r.Handle(path+"*", limitPaths(opts.ScanLimiter, h, apiconnect.DraftServiceScanProcedure))
	}

	if opts.StaticPath != "" {
		r.NotFound(staticHandler(opts.StaticPath))
	}
	return r
}
