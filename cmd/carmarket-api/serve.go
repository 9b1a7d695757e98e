package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/observability"
	"github.com/kbukum/carmarket/server"
	"github.com/kbukum/carmarket/server/boundary"
	"github.com/kbukum/carmarket/server/middleware"
	"github.com/kbukum/carmarket/version"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(load func() (*Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger.Init(&cfg.Logging)

			app, err := newApp(cmd.Context(), cfg, logger.GetGlobalLogger())
			if err != nil {
				return err
			}
			if err := app.start(cmd.Context()); err != nil {
				return err
			}
			waitForSignal(cmd.Context(), app.log)
			return app.stop()
		},
	}
}

// app is the assembled service: server, metrics and their shutdown order.
type app struct {
	cfg    *Config
	log    *logger.Logger
	server *server.Server
	meter  *observability.MeterProvider
}

func newApp(ctx context.Context, cfg *Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	var metrics *observability.ErrorMetrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.meter = mp
		if metrics, err = observability.NewErrorMetrics(mp.Meter(serviceName)); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	a.server = server.New(cfg.Server, log, metrics)
	a.server.ApplyDefaults(cfg.Name, cfg.Version, errors.Default)
	if a.meter != nil {
		a.server.RegisterMetrics(a.meter.Handler)
	}

	api := a.server.Protected("/api")
	api.GET("/me", me)
	return a, nil
}

// me echoes the authenticated caller.
func me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		boundary.Abort(c, errors.New(errors.Errors.Unauthorized))
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": claims.Subject, "role": claims.Role})
}

func (a *app) start(ctx context.Context) error {
	build := version.Get()
	a.log.Info("Starting application", logger.Fields(
		"name", a.cfg.Name,
		"version", a.cfg.Version,
		"build", build.String(),
		"go_version", build.GoVersion,
		"environment", a.cfg.Environment,
		"metrics", a.cfg.Metrics.Enabled,
	))
	return a.server.Start(ctx)
}

// stop shuts down the server, then flushes metrics.
func (a *app) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Stop(ctx)
	if a.meter != nil {
		if merr := a.meter.Shutdown(ctx); merr != nil {
			a.log.Error("Meter shutdown error", logger.ErrorFields("shutdown", merr))
			if err == nil {
				err = merr
			}
		}
	}
	a.log.Info("Application shutdown complete")
	return err
}

// waitForSignal blocks until SIGINT, SIGTERM or context cancellation.
func waitForSignal(ctx context.Context, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
	case <-ctx.Done():
		log.Info("Context canceled, shutting down")
	}
}
