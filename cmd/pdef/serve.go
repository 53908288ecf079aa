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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pdef/pdef-go"
	"github.com/pdef/pdef-go/internal/config"
	"github.com/pdef/pdef-go/internal/demo"
	"github.com/pdef/pdef-go/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Overrides the config file." short:"a"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.LoadWithFallback(cli.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	logger := cfg.Logging.NewLogger(os.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	schema := demo.NewSchema()
	srv := newServer(cfg, schema, demo.NewStore(), logger, reg)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(cfg, srv, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pdef listening", slog.String("addr", cfg.Server.Addr), slog.String("root", schema.Notes.Name()))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// newServer builds the pdef server for the demo schema with logging and
// metrics interceptors.
func newServer(cfg *config.Config, schema *demo.Schema, store *demo.Store, logger *slog.Logger, reg prometheus.Registerer) *pdef.Server {
	srv := demo.NewServer(schema, store).
		WithLogger(logger).
		WithUnaryInterceptor(middleware.LoggingInterceptor(logger))
	if cfg.Server.MaxBodySize > 0 {
		srv = srv.WithMaxRequestBodySize(cfg.Server.MaxBodySize)
	}
	if cfg.Metrics.Enabled {
		srv = srv.WithUnaryInterceptor(middleware.NewMetrics(reg).Interceptor())
	}
	return srv
}

// newRouter mounts the REST handler under the configured base path, next to
// the describe and metrics endpoints.
func newRouter(cfg *config.Config, srv *pdef.Server, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(&middleware.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowHeaders:     cfg.CORS.AllowHeaders,
			ExposeHeaders:    cfg.CORS.ExposeHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Describe.Enabled {
		r.Handle(cfg.Describe.Path, pdef.DescribeHandler(srv.Interface()))
	}
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	h := srv.Handler()
	if base := cfg.Server.BasePath; base != "" && base != "/" {
		r.Mount(base, http.StripPrefix(base, h))
	} else {
		r.Handle("/", h)
		r.Handle("/*", h)
	}
	return r
}
