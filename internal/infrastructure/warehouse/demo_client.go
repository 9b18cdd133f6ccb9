package warehouse

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// DefaultDemoStep is how often the demo warehouse advances one order
const DefaultDemoStep = 30 * time.Second

// demoProgression is the lifecycle the demo warehouse walks orders through
var demoProgression = map[fulfillment.ExternalStatus]fulfillment.ExternalStatus{
	fulfillment.ExternalStatusPending:    fulfillment.ExternalStatusProcessing,
	fulfillment.ExternalStatusProcessing: fulfillment.ExternalStatusShipped,
	fulfillment.ExternalStatusShipped:    fulfillment.ExternalStatusDelivered,
}

var demoCarriers = []string{"Aramex", "DHL", "SMSA"}

// DemoClient serves a deterministic in-memory warehouse. Every step one
// order advances through its lifecycle so the change feed has activity.
type DemoClient struct {
	mu            sync.Mutex
	orders        []fulfillment.ExternalOrder
	now           func() time.Time
	step          time.Duration
	lastAdvance   time.Time
	cursor        int
	webhookSecret string
}

// DemoOption configures a DemoClient
type DemoOption func(*DemoClient)

// WithDemoClock replaces the wall clock
func WithDemoClock(now func() time.Time) DemoOption {
	return func(d *DemoClient) {
		d.now = now
	}
}

// WithDemoStep sets how often an order advances; zero freezes the dataset
func WithDemoStep(step time.Duration) DemoOption {
	return func(d *DemoClient) {
		d.step = step
	}
}

// WithDemoWebhookSecret lets the demo backend verify signed test deliveries
func WithDemoWebhookSecret(secret string) DemoOption {
	return func(d *DemoClient) {
		d.webhookSecret = secret
	}
}

// NewDemoClient creates a demo warehouse seeded with sample orders
func NewDemoClient(opts ...DemoOption) *DemoClient {
	d := &DemoClient{now: time.Now, step: DefaultDemoStep}
	for _, opt := range opts {
		opt(d)
	}
	d.lastAdvance = d.now()
	d.orders = seedDemoOrders(d.lastAdvance)
	return d
}

func seedDemoOrders(now time.Time) []fulfillment.ExternalOrder {
	countries := []string{"SA", "AE", "KW", "QA"}
	statuses := []fulfillment.ExternalStatus{
		fulfillment.ExternalStatusPending,
		fulfillment.ExternalStatusProcessing,
		fulfillment.ExternalStatusShipped,
		fulfillment.ExternalStatusDelivered,
		fulfillment.ExternalStatusReturned,
		fulfillment.ExternalStatusCancelled,
	}

	orders := make([]fulfillment.ExternalOrder, 0, 24)
	for i := 0; i < 24; i++ {
		status := statuses[i%len(statuses)]
		o := fulfillment.ExternalOrder{
			ExternalID:   fmt.Sprintf("WH-%05d", 10001+i),
			Reference:    fmt.Sprintf("COD-%04d", 1001+i),
			Status:       status,
			StatusLabel:  status.Label(),
			Country:      countries[i%len(countries)],
			CustomerName: fmt.Sprintf("Demo Customer %d", i+1),
			CODAmount:    decimal.NewFromInt(int64(99 + 25*(i%7))),
			UpdatedAt:    now.Add(-time.Duration(24-i) * time.Hour),
		}
		if shippedOrLater(status) {
			o.TrackingCode = fmt.Sprintf("TRK%08d", 50000000+i)
			o.Carrier = demoCarriers[i%len(demoCarriers)]
		}
		orders = append(orders, o)
	}
	return orders
}

func shippedOrLater(s fulfillment.ExternalStatus) bool {
	return s == fulfillment.ExternalStatusShipped || s == fulfillment.ExternalStatusDelivered || s == fulfillment.ExternalStatusReturned
}

// Mode implements fulfillment.WarehouseClient
func (d *DemoClient) Mode() fulfillment.Mode {
	return fulfillment.ModeDemo
}

// GetOrders implements fulfillment.WarehouseClient. Orders are returned most
// recently updated first, like the real API.
func (d *DemoClient) GetOrders(ctx context.Context, filter fulfillment.OrderFilter) (*fulfillment.OrderPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter = filter.Normalize()

	d.mu.Lock()
	d.advance()
	matched := make([]fulfillment.ExternalOrder, 0, len(d.orders))
	for i := range d.orders {
		if filter.Matches(&d.orders[i]) {
			matched = append(matched, d.orders[i])
		}
	}
	d.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	page := &fulfillment.OrderPage{Total: len(matched), Page: filter.Page, Limit: filter.Limit}
	start := (filter.Page - 1) * filter.Limit
	if start < len(matched) {
		end := min(start+filter.Limit, len(matched))
		page.Orders = matched[start:end]
	}
	return page, nil
}

// advance moves one order per elapsed step; d.mu must be held
func (d *DemoClient) advance() {
	if d.step <= 0 {
		return
	}
	now := d.now()
	for now.Sub(d.lastAdvance) >= d.step {
		d.lastAdvance = d.lastAdvance.Add(d.step)
		d.advanceNext(now)
	}
}

func (d *DemoClient) advanceNext(now time.Time) {
	for range d.orders {
		o := &d.orders[d.cursor]
		d.cursor = (d.cursor + 1) % len(d.orders)

		next, ok := demoProgression[o.Status]
		if !ok {
			continue
		}
		o.Status = next
		o.StatusLabel = next.Label()
		o.UpdatedAt = now
		if next == fulfillment.ExternalStatusShipped && o.TrackingCode == "" {
			o.TrackingCode = fmt.Sprintf("TRK%08d", 60000000+d.cursor)
			o.Carrier = demoCarriers[d.cursor%len(demoCarriers)]
		}
		return
	}
}

// SyncOrders implements fulfillment.WarehouseClient
func (d *DemoClient) SyncOrders(ctx context.Context, since *time.Time, sink fulfillment.OrderSink) (*fulfillment.SyncResult, error) {
	return syncOrders(ctx, d, since, sink, d.now)
}

// TestConnection implements fulfillment.WarehouseClient
func (d *DemoClient) TestConnection(_ context.Context) fulfillment.ConnectionCheck {
	return fulfillment.ConnectionCheck{
		Connected: true,
		Message:   "Demo mode: warehouse API credentials are not configured",
	}
}

// VerifyWebhookSignature implements fulfillment.WarehouseClient
func (d *DemoClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return verifySignature(d.webhookSecret, rawBody, signature)
}

var _ fulfillment.WarehouseClient = (*DemoClient)(nil)
