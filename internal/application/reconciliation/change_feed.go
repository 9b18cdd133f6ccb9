package reconciliation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/infrastructure/telemetry"
)

// DefaultFeedInterval is the polling period of a change feed
const DefaultFeedInterval = 10 * time.Second

// FeedMessageType tags a change feed message
type FeedMessageType string

const (
	FeedConnected   FeedMessageType = "connected"
	FeedOrderUpdate FeedMessageType = "order_update"
	FeedHeartbeat   FeedMessageType = "heartbeat"
	FeedError       FeedMessageType = "error"
)

// FeedMessage is one message pushed to a dashboard client
type FeedMessage struct {
	Type      FeedMessageType            `json:"type"`
	Order     *fulfillment.ExternalOrder `json:"order,omitempty"`
	Count     *int                       `json:"count,omitempty"`
	Mode      fulfillment.Mode           `json:"mode,omitempty"`
	Message   string                     `json:"message,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
}

// ChangeFeed polls the warehouse for changed orders on behalf of one client
// connection. Each Run call owns its own cursor and ticker.
type ChangeFeed struct {
	client   fulfillment.WarehouseClient
	interval time.Duration
	metrics  *telemetry.ReconciliationMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewChangeFeed creates a change feed; a non-positive interval uses the default
func NewChangeFeed(client fulfillment.WarehouseClient, interval time.Duration, metrics *telemetry.ReconciliationMetrics, logger *zap.Logger) *ChangeFeed {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeed{
		client:   client,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Interval returns the polling period
func (f *ChangeFeed) Interval() time.Duration {
	return f.interval
}

// Run emits a connected message and then one poll per interval until ctx is
// done or emit fails. Ticks run on the calling goroutine and never overlap;
// emit is never called after Run returns.
func (f *ChangeFeed) Run(ctx context.Context, emit func(FeedMessage) error) error {
	f.metrics.FeedClientConnected(ctx)
	defer f.metrics.FeedClientDisconnected(context.WithoutCancel(ctx))

	cursor := f.now()
	if err := emit(FeedMessage{
		Type:      FeedConnected,
		Mode:      f.client.Mode(),
		Message:   "Connected to warehouse change feed",
		Timestamp: cursor,
	}); err != nil {
		return err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			next, err := f.tick(ctx, cursor, emit)
			if err != nil {
				return err
			}
			cursor = next
		}
	}
}

// tick polls every page of changes and returns the cursor for the next tick.
// The cursor only advances when all pages were read, so a failed poll is
// retried in full and orders already pushed may be pushed again.
func (f *ChangeFeed) tick(ctx context.Context, cursor time.Time, emit func(FeedMessage) error) (time.Time, error) {
	started := f.now()
	since := cursor
	filter := fulfillment.OrderFilter{
		Page:  1,
		Limit: fulfillment.MaxOrderPageSize,
		Since: &since,
	}

	count := 0
	for {
		page, err := f.client.GetOrders(ctx, filter)
		if err != nil {
			if ctx.Err() != nil {
				return cursor, nil
			}
			f.logger.Warn("Change feed poll failed", zap.Int("page", filter.Page), zap.Error(err))
			return cursor, emit(FeedMessage{Type: FeedError, Message: err.Error(), Timestamp: started})
		}

		for i := range page.Orders {
			if err := emit(FeedMessage{Type: FeedOrderUpdate, Order: &page.Orders[i], Timestamp: started}); err != nil {
				return cursor, err
			}
		}
		count += len(page.Orders)

		if len(page.Orders) == 0 || !page.HasMore() {
			break
		}
		if ctx.Err() != nil {
			return cursor, nil
		}
		filter.Page++
	}

	if err := emit(FeedMessage{Type: FeedHeartbeat, Count: &count, Timestamp: started}); err != nil {
		return cursor, err
	}
	return started, nil
}
