package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"webbrowser/internal/api/v1/handler"
	"webbrowser/internal/api/v1/router"
	"webbrowser/internal/capability"
	"webbrowser/internal/config"
	"webbrowser/internal/debug"
	"webbrowser/internal/log"
	"webbrowser/internal/service"
	"webbrowser/internal/toolserver"
)

const shutdownTimeout = 5 * time.Second

// Dependencies is bound into every command's Run method.
type Dependencies struct {
	Ctx    context.Context
	Config *config.Config
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	EnvFile string `name:"env-file" default:".env" help:"Optional env file with settings"`

	Serve ServeCmd `cmd:"" help:"Run the HTTP API"`
	Stdio StdioCmd `cmd:"" help:"Run the browse_webpage tool server on stdin/stdout"`
}

// ServeCmd is the "serve" subcommand. Zero-valued flags keep the loaded settings.
type ServeCmd struct {
	Host     string `help:"Host address to bind to"`
	Port     int    `help:"Port to bind to"`
	Workers  int    `help:"Number of OS threads executing Go code (GOMAXPROCS)"`
	LogLevel string `name:"log-level" help:"Logging level (debug, info, warning, error, critical)"`
	Reload   bool   `help:"Accepted for compatibility; reloading is not supported"`
}

// StdioCmd is the "stdio" subcommand.
type StdioCmd struct {
	LogLevel string `name:"log-level" help:"Logging level (debug, info, warning, error, critical)"`
}

func (c *ServeCmd) apply(cfg *config.Config) {
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.Reload {
		cfg.Reload = true
	}
}

func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Workers > 0 {
		runtime.GOMAXPROCS(cfg.Workers)
	}
	if cfg.Reload {
		log.Logger.Warn("reload requested but not supported, ignoring")
	}

	svc := service.NewFromConfig(cfg)
	api := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(cfg, handler.New(svc, capability.New(cfg))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metrics := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           router.NewMetricsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Pprof only enabled in debug mode
	var pprof *http.Server
	if cfg.Debug {
		pprof = debug.StartPprof(cfg.PprofAddr)
	}

	g, gctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		log.Logger.Info("Server started", zap.String("addr", api.Addr), zap.String("app", cfg.AppName))
		return listen(api)
	})
	g.Go(func() error {
		log.Logger.Info("Metrics server started", zap.String("addr", metrics.Addr))
		return listen(metrics)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Logger.Info("Shutting down server gracefully")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := errors.Join(api.Shutdown(ctx), metrics.Shutdown(ctx))
		if pprof != nil {
			err = errors.Join(err, pprof.Shutdown(ctx))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Logger.Info("Server exited successfully")
	return nil
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *StdioCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	defer log.Sync()

	srv := toolserver.New(cfg, service.NewFromConfig(cfg), capability.New(cfg))
	if err := srv.Run(deps.Ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
