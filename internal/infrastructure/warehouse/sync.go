package warehouse

import (
	"context"
	"time"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// maxSyncPages stops a sync pass against a warehouse whose totals never converge
const maxSyncPages = 1000

// orderLister is the page source a sync pass reads from
type orderLister interface {
	GetOrders(ctx context.Context, filter fulfillment.OrderFilter) (*fulfillment.OrderPage, error)
}

// syncOrders walks every page modified since the given time and hands each
// order to sink. Sink failures are recorded and skipped. A failing first page
// is returned as an error; a later one ends the pass with what was stored.
func syncOrders(ctx context.Context, src orderLister, since *time.Time, sink fulfillment.OrderSink, now func() time.Time) (*fulfillment.SyncResult, error) {
	result := &fulfillment.SyncResult{}
	filter := fulfillment.OrderFilter{Page: 1, Limit: fulfillment.MaxOrderPageSize, Since: since}

	for filter.Page <= maxSyncPages {
		if err := ctx.Err(); err != nil {
			if filter.Page == 1 {
				return nil, err
			}
			break
		}

		page, err := src.GetOrders(ctx, filter)
		if err != nil {
			if filter.Page == 1 {
				return nil, err
			}
			result.Failures = append(result.Failures, fulfillment.SyncFailure{Message: err.Error()})
			result.Errors++
			break
		}

		for i := range page.Orders {
			order := page.Orders[i]
			syncedAt := now()
			order.LastSyncAt = &syncedAt
			if err := sink.UpsertExternalOrder(ctx, &order); err != nil {
				result.Errors++
				result.Failures = append(result.Failures, fulfillment.SyncFailure{
					ExternalID: order.ExternalID,
					Message:    err.Error(),
				})
				continue
			}
			result.Synced++
		}

		if len(page.Orders) == 0 || !page.HasMore() {
			break
		}
		filter.Page++
	}

	result.Finish(now())
	return result, nil
}
