package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/gradebridge-backend/internal/platform/envutil"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

const (
	tracerName         = "github.com/yungbote/gradebridge-backend"
	defaultServiceName = "gradebridge"
	defaultSampleRatio = 0.1
)

// alwaysSampledPrefixes name root spans kept regardless of the ratio.
var alwaysSampledPrefixes = []string{"grading."}

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string

	// Filled from OTEL_* when zero.
	Enabled     bool
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64
}

func (c OtelConfig) withEnv() OtelConfig {
	if !c.Enabled {
		c.Enabled = envutil.Bool("OTEL_ENABLED", false)
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = envutil.String("OTEL_SERVICE_NAME", defaultServiceName)
	}
	if c.Endpoint == "" {
		c.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	}
	if !c.Insecure {
		c.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false)
	}
	if c.Headers == nil {
		c.Headers = parseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", defaultSampleRatio)
	}
	c.SampleRatio = clampRatio(c.SampleRatio)
	return c
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs a tracer provider when tracing is enabled. The returned shutdown is nil otherwise.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	if log == nil {
		log = logger.Nop()
	}
	otelOnce.Do(func() {
		cfg = cfg.withEnv()
		if !cfg.Enabled {
			return
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(newSampler(cfg.SampleRatio)),
			sdktrace.WithResource(res),
		}
		exporter, err := buildTraceExporter(ctx, log, cfg)
		if err != nil {
			log.Warn("otel exporter init failed (continuing)", "error", err)
		}
		if exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized",
			"service", cfg.ServiceName,
			"endpoint", cfg.Endpoint,
			"sample_ratio", cfg.SampleRatio,
		)
	})
	return otelShutdown
}

// StartSpan starts a span on the global tracer. It is a no-op span until InitOTel runs.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

type prefixSampler struct {
	ratio sdktrace.Sampler
}

// newSampler honours the parent decision, always keeps evaluation roots and
// samples other roots by ratio.
func newSampler(ratio float64) sdktrace.Sampler {
	return sdktrace.ParentBased(prefixSampler{ratio: sdktrace.TraceIDRatioBased(ratio)})
}

func (s prefixSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	for _, prefix := range alwaysSampledPrefixes {
		if strings.HasPrefix(p.Name, prefix) {
			return sdktrace.SamplingResult{
				Decision:   sdktrace.RecordAndSample,
				Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
			}
		}
	}
	return s.ratio.ShouldSample(p)
}

func (s prefixSampler) Description() string {
	return "AlwaysSample(" + strings.Join(alwaysSampledPrefixes, ",") + ")+" + s.ratio.Description()
}

func clampRatio(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

func buildTraceExporter(ctx context.Context, log *logger.Logger, cfg OtelConfig) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if cfg.Headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}
