package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/cache"
	"github.com/Sumatoshi-tech/gitattr/pkg/config"
	"github.com/Sumatoshi-tech/gitattr/pkg/gitexec"
	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
	"github.com/Sumatoshi-tech/gitattr/pkg/version"
)

const telemetryReadHeaderTimeout = 5 * time.Second

// runtime is the wired object graph behind one command invocation.
type runtime struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *observability.REDMetrics
	service  *attribution.Service
	shutdown func(ctx context.Context) error
}

func newRuntime(opts *Options, mode observability.AppMode) (*runtime, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg, opts)

	obsCfg, err := observabilityConfig(cfg, opts, mode)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	stopTelemetry, err := serveTelemetry(cfg.Metrics.Addr, providers, cfg.Git.Binary)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	runner := gitexec.NewRunner(gitexec.RunnerOptions{
		Binary:    cfg.Git.Binary,
		Timeout:   cfg.Git.CommandTimeout,
		MaxOutput: cfg.Git.MaxOutput,
		Logger:    providers.Logger,
		Tracer:    providers.Tracer,
	})

	service := attribution.NewService(attribution.Deps{
		Gateway: gitexec.NewGateway(runner),
		Logger:  providers.Logger,
		Tracer:  providers.Tracer,
		Cache:   detailCache(cfg, mode),
	})

	return &runtime{
		logger:  providers.Logger,
		tracer:  providers.Tracer,
		metrics: red,
		service: service,
		shutdown: func(ctx context.Context) error {
			return errors.Join(stopTelemetry(ctx), providers.Shutdown(ctx))
		},
	}, nil
}

func (rt *runtime) close() {
	err := rt.shutdown(context.Background())
	if err != nil {
		rt.logger.Warn("observability shutdown failed", "error", err)
	}
}

// detailCache is only worth keeping in the long-lived MCP server.
func detailCache(cfg *config.Config, mode observability.AppMode) *cache.DetailCache {
	if mode != observability.ModeMCP || cfg.Cache.DetailBytes == 0 {
		return nil
	}

	return cache.NewDetailCache(cfg.Cache.DetailBytes)
}

func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.GitBinary != "" {
		cfg.Git.Binary = opts.GitBinary
	}

	if opts.Timeout > 0 {
		cfg.Git.CommandTimeout = opts.Timeout
	}
}

func observabilityConfig(cfg *config.Config, opts *Options, mode observability.AppMode) (observability.Config, error) {
	level, err := observability.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.Prometheus = cfg.Metrics.Addr != ""
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.DebugTrace = cfg.Observability.DebugTrace
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.FormatJSON || mode == observability.ModeMCP

	if opts.Debug {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	return obsCfg, nil
}

// serveTelemetry starts the /metrics, /healthz and /readyz listener when
// addr is set and returns its graceful stop.
func serveTelemetry(addr string, providers observability.Providers, gitBinary string) (func(context.Context) error, error) {
	if addr == "" {
		return func(context.Context) error { return nil }, nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           observability.NewTelemetryMux(providers.MetricsHandler, gitAvailable(gitBinary)),
		ReadHeaderTimeout: telemetryReadHeaderTimeout,
	}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Error("telemetry listener stopped", "addr", addr, "error", serveErr)
		}
	}()

	providers.Logger.Debug("telemetry listener started", "addr", listener.Addr().String())

	return srv.Shutdown, nil
}

func gitAvailable(binary string) observability.ReadyCheck {
	return func(context.Context) error {
		_, err := exec.LookPath(binary)
		if err != nil {
			return fmt.Errorf("git binary %q: %w", binary, err)
		}

		return nil
	}
}
