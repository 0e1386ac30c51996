package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	sloglogrus "github.com/samber/slog-logrus/v2"
	slogmulti "github.com/samber/slog-multi"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	logglobal "go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"golang.org/x/sync/errgroup"
)

// Config describes where the process reports to.
type Config struct {
	// AppName is the otel service name and the prometheus namespace.
	AppName string
	// Endpoint is an OTLP http collector. When empty the exporters follow the
	// standard OTEL_*_EXPORTER variables, which default to none here.
	Endpoint string
	Insecure bool
	// Level is the minimum level written to the console.
	Level slog.Level
}

type Client struct {
	log *slog.Logger

	tracerProvider *trace.TracerProvider
	metricProvider *metric.MeterProvider
	loggerProvider *log.LoggerProvider
}

func (client *Client) Flush(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if client.metricProvider != nil {
		g.Go(func() error {
			return client.metricProvider.ForceFlush(ctx)
		})
	}
	if client.loggerProvider != nil {
		g.Go(func() error {
			return client.loggerProvider.ForceFlush(ctx)
		})
	}
	if client.tracerProvider != nil {
		g.Go(func() error {
			return client.tracerProvider.ForceFlush(ctx)
		})
	}

	return g.Wait()
}

// Shutdown flushes and stops every provider. Errors are logged, not returned,
// since it runs on the way out of the process.
func (client *Client) Shutdown(ctx context.Context) {
	type provider struct {
		name string
		p    interface{ Shutdown(context.Context) error }
	}
	var providers []provider
	if client.metricProvider != nil {
		providers = append(providers, provider{"metric", client.metricProvider})
	}
	if client.tracerProvider != nil {
		providers = append(providers, provider{"tracer", client.tracerProvider})
	}
	if client.loggerProvider != nil {
		providers = append(providers, provider{"logger", client.loggerProvider})
	}

	for _, p := range providers {
		if err := p.p.Shutdown(ctx); err != nil {
			client.log.ErrorContext(ctx, "error shutting down provider", "provider", p.name, "error", err.Error())
		}
	}
}

// Setup installs metric, trace and log providers as the otel globals and
// replaces the default slog logger with one writing to the console and to the
// otel log provider. A prometheus reader is always attached so /metrics works
// whichever exporter is configured.
func Setup(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		setEnvIfNotSet("OTEL_TRACES_EXPORTER", "none")
		setEnvIfNotSet("OTEL_LOGS_EXPORTER", "none")
		setEnvIfNotSet("OTEL_METRICS_EXPORTER", "none")
	}

	client := &Client{
		log: slog.With("component", "telemetry"),
	}
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(cause error) {
		client.log.ErrorContext(ctx, "otel error", "error", cause.Error())
	}))

	r, err := newResource(cfg.AppName)
	if err != nil {
		return nil, err
	}

	if err := client.setupMetrics(ctx, cfg, r); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := client.setupTraces(ctx, cfg, r); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := client.setupLogs(ctx, cfg, r); err != nil {
		return nil, fmt.Errorf("failed to initialize logs: %w", err)
	}

	slog.SetDefault(newLogger(cfg, client.loggerProvider))

	// recreate telemetry logger on top of the new default
	client.log = slog.With("component", "telemetry")
	if cfg.Endpoint != "" {
		client.log.InfoContext(ctx, "exporting to otlp collector", "endpoint", cfg.Endpoint)

		runtime.SetMutexProfileFraction(5)
		runtime.SetBlockProfileRate(5)
	}

	return client, nil
}

func setEnvIfNotSet(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		os.Setenv(key, value)
	}
}

func newLogger(cfg Config, provider *log.LoggerProvider) *slog.Logger {
	console := logrus.StandardLogger()
	if cfg.Level < slog.LevelInfo {
		console.SetLevel(logrus.DebugLevel)
	}

	return slog.New(slogmulti.Fanout(
		sloglogrus.Option{Level: cfg.Level, Logger: console}.NewLogrusHandler(),
		otelslog.NewHandler(cfg.AppName, otelslog.WithLoggerProvider(provider)),
	))
}

func newResource(appName string) (*resource.Resource, error) {
	hostName, _ := os.Hostname()

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(appName),
			semconv.HostName(hostName),
			semconv.ServiceInstanceID(uuid.NewString()),
		),
	)
}

func (client *Client) setupMetrics(ctx context.Context, cfg Config, r *resource.Resource) error {
	reader, err := metricReader(ctx, cfg)
	if err != nil {
		return err
	}

	promExporter, err := prometheus.New(prometheus.WithNamespace(cfg.AppName))
	if err != nil {
		return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	client.metricProvider = metric.NewMeterProvider(
		metric.WithResource(r),
		metric.WithReader(reader),
		metric.WithReader(promExporter),
	)
	otel.SetMeterProvider(client.metricProvider)

	up, err := otel.Meter(cfg.AppName + "/telemetry").Int64Counter("up")
	if err != nil {
		return err
	}
	up.Add(ctx, 1)

	return nil
}

func metricReader(ctx context.Context, cfg Config) (metric.Reader, error) {
	if cfg.Endpoint == "" {
		return autoexport.NewMetricReader(ctx)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{Enabled: false}),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return metric.NewPeriodicReader(exporter), nil
}

func (client *Client) setupTraces(ctx context.Context, cfg Config, r *resource.Resource) error {
	exporter, err := spanExporter(ctx, cfg)
	if err != nil {
		return err
	}

	client.tracerProvider = trace.NewTracerProvider(
		trace.WithResource(r),
		trace.WithBatcher(exporter, trace.WithExportTimeout(time.Second)),
	)
	otel.SetTracerProvider(client.tracerProvider)
	return nil
}

func spanExporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return autoexport.NewSpanExporter(ctx)
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{Enabled: false}),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func (client *Client) setupLogs(ctx context.Context, cfg Config, r *resource.Resource) error {
	exporter, err := logExporter(ctx, cfg)
	if err != nil {
		return err
	}

	client.loggerProvider = log.NewLoggerProvider(
		log.WithResource(r),
		log.WithProcessor(log.NewBatchProcessor(exporter, log.WithExportInterval(time.Second))),
	)
	logglobal.SetLoggerProvider(client.loggerProvider)
	return nil
}

func logExporter(ctx context.Context, cfg Config) (log.Exporter, error) {
	if cfg.Endpoint == "" {
		return autoexport.NewLogExporter(ctx)
	}

	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
		otlploghttp.WithRetry(otlploghttp.RetryConfig{Enabled: false}),
	}
	if cfg.Insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}
	return otlploghttp.New(ctx, opts...)
}
