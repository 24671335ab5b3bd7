// Package app wires the bridge daemon together and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/grafana/pyroscope-go"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/api"
	"github.com/pingleware/metratrader-bridge/internal/bridge"
	"github.com/pingleware/metratrader-bridge/internal/config"
	"github.com/pingleware/metratrader-bridge/internal/indicator"
	"github.com/pingleware/metratrader-bridge/internal/logging"
	"github.com/pingleware/metratrader-bridge/internal/tracing"
	"github.com/pingleware/metratrader-bridge/internal/version"
)

// App is the application lifecycle manager.
type App struct {
	cfg *config.Config
}

// New creates a new App instance.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Options returns the dependency graph of the daemon.
func (a *App) Options() fx.Option {
	return fx.Options(
		fx.Supply(a.cfg),
		fx.Provide(
			newLogger,
			newHub,
			newTable,
			newTracer,
			newServer,
			fx.Annotate(indicator.NewTALib, fx.As(new(indicator.Calculator))),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(startProfiler, runServer, startDemo),
	)
}

// Run starts the bridge and blocks until ctx is cancelled, a shutdown
// signal arrives or the listener fails.
func (a *App) Run(ctx context.Context) error {
	fxApp := fx.New(a.Options())
	if err := fxApp.Err(); err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("starting application: %w", err)
	}

	var exitCode int
	select {
	case <-ctx.Done():
	case sig := <-fxApp.Wait():
		exitCode = sig.ExitCode
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer stopCancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping application: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("bridge exited with code %d", exitCode)
	}
	return nil
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.Build(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, err
	}
	log.Info("starting metatrader bridge",
		zap.String("version", version.Version),
		zap.String("env", cfg.App.Env),
		zap.String("log_level", cfg.App.LogLevel),
	)
	lc.Append(fx.StopHook(func() {
		log.Info("metatrader bridge stopped")
		_ = log.Sync()
	}))
	return log, nil
}

func newHub(log *zap.Logger) *api.Hub {
	return api.NewHub(log.Named("ws"))
}

// newTable builds the session table and streams its events to the hub.
func newTable(cfg *config.Config, hub *api.Hub, log *zap.Logger) *bridge.Table {
	t := bridge.New(cfg.Bridge.MaxSessions,
		bridge.WithLogger(log.Named("bridge")),
		bridge.WithObserver(hub.Observe),
		bridge.WithTickCapacity(cfg.Bridge.TickCapacity),
		bridge.WithKeepReadFlag(cfg.Bridge.KeepReadFlagOnSend),
	)
	log.Info("session_table_ready",
		zap.Int("max_sessions", t.Capacity()),
		zap.Int("tick_capacity", t.TickCapacity()),
		zap.Bool("keep_read_flag", cfg.Bridge.KeepReadFlagOnSend),
	)
	return t
}

func newTracer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (opentracing.Tracer, error) {
	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Host:        cfg.Tracing.AgentHost,
		Port:        cfg.Tracing.AgentPort,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(closer))
	return tracer, nil
}

func newServer(cfg *config.Config, table *bridge.Table, calc indicator.Calculator, hub *api.Hub, tracer opentracing.Tracer, log *zap.Logger) *api.Server {
	return api.NewServer(api.Options{
		Address:           cfg.API.ListenAddress,
		ReadHeaderTimeout: cfg.API.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.API.ShutdownTimeout,
		AllowedOrigins:    cfg.API.AllowedOrigins,
		Version:           version.Version,
	}, table, calc, hub, tracer, log.Named("api"))
}

// runServer starts the hub and the HTTP listener with the application and
// shuts the application down if the listener fails.
func runServer(lc fx.Lifecycle, sd fx.Shutdowner, srv *api.Server, hub *api.Hub, log *zap.Logger) {
	hubCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go hub.Run(hubCtx)
			errCh := srv.Start()
			go func() {
				if err, ok := <-errCh; ok && err != nil {
					log.Error("api_server_failed", zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}

func startProfiler(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) error {
	if !cfg.Profiling.Enabled {
		return nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.Profiling.ApplicationName,
		ServerAddress:   cfg.Profiling.ServerAddress,
		Tags:            map[string]string{"env": cfg.App.Env},
		Logger:          pyroscopeLogger{log.Named("pyroscope").Sugar()},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return fmt.Errorf("starting profiler: %w", err)
	}
	log.Info("profiler_started", zap.String("server", cfg.Profiling.ServerAddress))
	lc.Append(fx.StopHook(func() error {
		if err := profiler.Stop(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}))
	return nil
}

// pyroscopeLogger routes profiler output through zap.
type pyroscopeLogger struct {
	*zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.SugaredLogger.Debugf(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.SugaredLogger.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.SugaredLogger.Errorf(format, args...) }
