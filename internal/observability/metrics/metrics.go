package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes back-office instruments.
type Metrics struct {
	documentsIssued  metric.Int64Counter
	documentsDeleted metric.Int64Counter
	stockMovements   metric.Int64Counter
	usageRefusals    metric.Int64Counter
	loginAttempts    metric.Int64Counter
}

// NewProvider configures the OTLP meter provider, or a no-op one when exporting is disabled.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New creates the domain instruments on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "backoffice"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.documentsIssued, err = meter.Int64Counter("backoffice_documents_issued_total"); err != nil {
		return nil, err
	}
	if m.documentsDeleted, err = meter.Int64Counter("backoffice_documents_deleted_total"); err != nil {
		return nil, err
	}
	if m.stockMovements, err = meter.Int64Counter("backoffice_stock_movements_total"); err != nil {
		return nil, err
	}
	if m.usageRefusals, err = meter.Int64Counter("backoffice_usage_refusals_total"); err != nil {
		return nil, err
	}
	if m.loginAttempts, err = meter.Int64Counter("backoffice_login_attempts_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordDocumentIssued counts a committed invoice or quotation.
func (m *Metrics) RecordDocumentIssued(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.documentsIssued.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("kind", kind))...))
}

// RecordDocumentDeleted counts a deleted invoice or quotation.
func (m *Metrics) RecordDocumentDeleted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.documentsDeleted.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("kind", kind))...))
}

// RecordStockMovement counts ledger rows by movement type.
func (m *Metrics) RecordStockMovement(ctx context.Context, movement string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.stockMovements.Add(ctx, int64(n), metric.WithAttributes(FilterAttributes(attribute.String("movement", movement))...))
}

// RecordUsageRefusal counts deletes refused because the entity is referenced.
func (m *Metrics) RecordUsageRefusal(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	m.usageRefusals.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("entity", entity))...))
}

// RecordLogin counts login attempts by outcome.
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("outcome", outcome))...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"kind":        {},
	"movement":    {},
	"entity":      {},
	"outcome":     {},
	"route":       {},
	"method":      {},
	"status_code": {},
}

// FilterAttributes strips labels outside the allow list to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
