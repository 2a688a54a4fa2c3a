package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campusbooks/bookstore-go-app/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds all application metrics. A nil *AppMetrics is valid and
// records nothing, which keeps service tests free of an OTLP pipeline.
type AppMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Database metrics
	DBQueriesTotal  metric.Int64Counter
	DBQueryDuration metric.Float64Histogram

	// Business metrics
	OrdersFinalized    metric.Int64Counter
	RevenueTotal       metric.Float64Counter
	CheckoutRejections metric.Int64Counter
	CartItemsCount     metric.Int64Gauge
	StockLevel         metric.Int64Gauge
	ActiveCartsCount   metric.Int64Gauge
	ReceiptsReceived   metric.Int64Counter

	// Sweep metrics
	SweptCartOrders metric.Int64Counter
	SweptReceipts   metric.Int64Counter

	// Product cache metrics
	CacheHits   metric.Int64Counter
	CacheMisses metric.Int64Counter

	serviceName string
}

// InitMetrics initializes the OpenTelemetry metrics pipeline and all
// application instruments.
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	// Explicit attributes take precedence over the environment.
	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.OTELExporterOTLPHeaders != "" {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTELExporterOTLPHeaders)))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(cfg.OTELServiceName)

	// Histogram buckets in milliseconds, expanded to 60s.
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: cfg.OTELServiceName}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	if m.DBQueriesTotal, err = meter.Int64Counter(
		"db.client.queries.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create db queries counter: %w", err)
	}

	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.client.queries.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}

	if m.OrdersFinalized, err = meter.Int64Counter(
		"orders_finalized_total",
		metric.WithDescription("Total number of orders finalized at checkout"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create orders finalized counter: %w", err)
	}

	if m.RevenueTotal, err = meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total revenue from finalized orders"),
		metric.WithUnit("KRW"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	if m.CheckoutRejections, err = meter.Int64Counter(
		"checkout_rejections_total",
		metric.WithDescription("Checkouts rejected for insufficient stock"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create checkout rejections counter: %w", err)
	}

	if m.CartItemsCount, err = meter.Int64Gauge(
		"cart_items_count",
		metric.WithDescription("Current number of lines in a user's staging order"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create cart items gauge: %w", err)
	}

	if m.StockLevel, err = meter.Int64Gauge(
		"stock_level",
		metric.WithDescription("Current stock level per product"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create stock level gauge: %w", err)
	}

	if m.ActiveCartsCount, err = meter.Int64Gauge(
		"active_carts_count",
		metric.WithDescription("Number of staging orders with at least one line"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create active carts gauge: %w", err)
	}

	if m.ReceiptsReceived, err = meter.Int64Counter(
		"receipts_received_total",
		metric.WithDescription("Total number of pickups confirmed"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create receipts received counter: %w", err)
	}

	if m.SweptCartOrders, err = meter.Int64Counter(
		"swept_cart_orders_total",
		metric.WithDescription("Stale staging orders removed by the cart sweep"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create swept cart orders counter: %w", err)
	}

	if m.SweptReceipts, err = meter.Int64Counter(
		"swept_receipts_total",
		metric.WithDescription("Stale pending receipts cancelled by the pickup sweep"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create swept receipts counter: %w", err)
	}

	if m.CacheHits, err = meter.Int64Counter(
		"cache_hits_total",
		metric.WithDescription("Total number of product cache hits"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	if m.CacheMisses, err = meter.Int64Counter(
		"cache_misses_total",
		metric.WithDescription("Total number of product cache misses"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	return m, meterProvider, nil
}

// WithServiceName adds service.name to attributes.
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordDBQuery records database query metrics including the SQL statement.
func (m *AppMetrics) RecordDBQuery(ctx context.Context, operation, table, statement string, start time.Time, success bool) {
	if m == nil {
		return
	}
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.statement", statement),
		attribute.String("db.system", "mysql"),
		attribute.String("status", status),
	}

	m.DBQueriesTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	m.DBQueryDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))
}

// RecordOrderFinalized records a completed checkout and its revenue.
func (m *AppMetrics) RecordOrderFinalized(ctx context.Context, userID int64, total float64) {
	if m == nil {
		return
	}
	attrs := m.WithServiceName([]attribute.KeyValue{
		attribute.Int64("user_id", userID),
	})
	m.OrdersFinalized.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.RevenueTotal.Add(ctx, total, metric.WithAttributes(attrs...))
}

// RecordCheckoutRejection records an all-or-nothing finalize failure.
func (m *AppMetrics) RecordCheckoutRejection(ctx context.Context, productName string) {
	if m == nil {
		return
	}
	m.CheckoutRejections.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("product_name", productName),
	})...))
}

// RecordCartSize records the line count of a user's staging order.
func (m *AppMetrics) RecordCartSize(ctx context.Context, userID int64, lines int) {
	if m == nil {
		return
	}
	m.CartItemsCount.Record(ctx, int64(lines), metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.Int64("user_id", userID),
	})...))
}

// RecordStockLevel records a product's stock after a mutation.
func (m *AppMetrics) RecordStockLevel(ctx context.Context, productID int64, stock int) {
	if m == nil {
		return
	}
	m.StockLevel.Record(ctx, int64(stock), metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.Int64("product_id", productID),
	})...))
}

// RecordActiveCarts records the current number of non-empty staging orders.
func (m *AppMetrics) RecordActiveCarts(ctx context.Context, count int64) {
	if m == nil {
		return
	}
	m.ActiveCartsCount.Record(ctx, count, metric.WithAttributes(m.WithServiceName(nil)...))
}

// RecordReceiptReceived records a confirmed pickup.
func (m *AppMetrics) RecordReceiptReceived(ctx context.Context) {
	if m == nil {
		return
	}
	m.ReceiptsReceived.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(nil)...))
}

// RecordSweep records rows affected by one sweep pass.
func (m *AppMetrics) RecordSweep(ctx context.Context, sweep string, carts, receipts int64) {
	if m == nil {
		return
	}
	attrs := m.WithServiceName([]attribute.KeyValue{attribute.String("sweep", sweep)})
	if carts > 0 {
		m.SweptCartOrders.Add(ctx, carts, metric.WithAttributes(attrs...))
	}
	if receipts > 0 {
		m.SweptReceipts.Add(ctx, receipts, metric.WithAttributes(attrs...))
	}
}

// RecordCacheLookup records a product cache hit or miss.
func (m *AppMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(nil)...))
	} else {
		m.CacheMisses.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(nil)...))
	}
}

// parseHeaders parses a header string in the form "key1=value1,key2=value2".
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	pairs := strings.Split(headerStr, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
