// Package api configures the preview HTTP server that serves the built,
// pre-rendered showroom site together with metrics and profiling endpoints.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"showroom/internal/config"
	"showroom/pkg/controller"
	"showroom/pkg/metrics"
)

// Options holds configuration for the preview server.
// Zero durations fall back to the net/http defaults.
type Options struct {
	// DistDir is the build output served by the site handler.
	DistDir string
	// AssetsPrefix is the URL prefix of fingerprinted build assets.
	AssetsPrefix string

	// Addr is the TCP address the server listens on, e.g. ":4173".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
}

// NewOptions maps the application configuration onto server Options.
func NewOptions(cfg *config.Config) Options {
	return Options{
		DistDir:      cfg.Site.DistDir,
		AssetsPrefix: cfg.Site.AssetsPrefix,

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// NewHandler wires the preview routes:
// - Prometheus metrics endpoint (MetricsPath), backed by its own registry
// - pprof endpoints for profiling
// - the site itself for every other path
// Site requests go through cache-control and metrics middlewares; every
// request is access-logged.
func NewHandler(opts Options) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewHTTP(reg)
	if err != nil {
		return nil, fmt.Errorf("could not create http metrics: %w", err)
	}

	mux := http.NewServeMux()

	// prometheus metrics
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// pprof
	mux.Handle(controller.PprofPrefix, controller.PprofMux())

	// site
	site := controller.WithCacheControl(opts.AssetsPrefix, NewSiteHandler(opts.DistDir))
	mux.Handle("/", controller.WithMetrics(m, site))

	// logger
	return controller.WithLogger(mux), nil
}

// NewServer returns a configured *http.Server serving NewHandler.
func NewServer(opts Options) (*http.Server, error) {
	handler, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}
