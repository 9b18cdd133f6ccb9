package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys
var (
	AttrEventKind = attribute.Key("kind")
	AttrOutcome   = attribute.Key("outcome")
	AttrResult    = attribute.Key("result")
)

// ReconciliationMetrics counts webhook deliveries, sync runs and feed
// subscribers. A nil *ReconciliationMetrics records nothing.
type ReconciliationMetrics struct {
	webhookReceived *Counter
	syncOrders      *Counter
	syncDuration    *Histogram
	feedClients     *UpDownCounter
}

// NewReconciliationMetrics registers the reconciliation instruments on meter.
func NewReconciliationMetrics(meter metric.Meter) (*ReconciliationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   ReconciliationMetrics
		err error
	)
	if m.webhookReceived, err = NewCounter(meter,
		"warehouse_webhook_received_total",
		"Warehouse webhook deliveries by event kind and outcome",
		"{deliveries}",
	); err != nil {
		return nil, err
	}
	if m.syncOrders, err = NewCounter(meter,
		"warehouse_sync_orders_total",
		"Warehouse orders processed by bulk sync",
		"{orders}",
	); err != nil {
		return nil, err
	}
	if m.syncDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "warehouse_sync_duration_seconds",
		Description: "Duration of bulk warehouse sync runs",
		Unit:        "s",
		Boundaries:  []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}); err != nil {
		return nil, err
	}
	if m.feedClients, err = NewUpDownCounter(meter,
		"warehouse_feed_clients",
		"Open change feed subscriptions",
		"{clients}",
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordWebhook counts one webhook delivery.
func (m *ReconciliationMetrics) RecordWebhook(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookReceived.Inc(ctx, AttrEventKind.String(kind), AttrOutcome.String(outcome))
}

// RecordSync records the outcome of one bulk sync run.
func (m *ReconciliationMetrics) RecordSync(ctx context.Context, synced, failed int, took time.Duration) {
	if m == nil {
		return
	}
	if synced > 0 {
		m.syncOrders.Add(ctx, int64(synced), AttrResult.String("synced"))
	}
	if failed > 0 {
		m.syncOrders.Add(ctx, int64(failed), AttrResult.String("failed"))
	}
	m.syncDuration.RecordDuration(ctx, took)
}

// FeedClientConnected increments the open subscription count.
func (m *ReconciliationMetrics) FeedClientConnected(ctx context.Context) {
	if m == nil {
		return
	}
	m.feedClients.Add(ctx, 1)
}

// FeedClientDisconnected decrements the open subscription count.
func (m *ReconciliationMetrics) FeedClientDisconnected(ctx context.Context) {
	if m == nil {
		return
	}
	m.feedClients.Add(ctx, -1)
}
