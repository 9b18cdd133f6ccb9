package reconciliation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
)

// MockWarehouseClient is a mock implementation of fulfillment.WarehouseClient
type MockWarehouseClient struct {
	mock.Mock
}

func (m *MockWarehouseClient) GetOrders(ctx context.Context, filter fulfillment.OrderFilter) (*fulfillment.OrderPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.OrderPage), args.Error(1)
}

func (m *MockWarehouseClient) SyncOrders(ctx context.Context, since *time.Time, sink fulfillment.OrderSink) (*fulfillment.SyncResult, error) {
	args := m.Called(ctx, since, sink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.SyncResult), args.Error(1)
}

func (m *MockWarehouseClient) TestConnection(ctx context.Context) fulfillment.ConnectionCheck {
	args := m.Called(ctx)
	return args.Get(0).(fulfillment.ConnectionCheck)
}

func (m *MockWarehouseClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	args := m.Called(rawBody, signature)
	return args.Bool(0)
}

func (m *MockWarehouseClient) Mode() fulfillment.Mode {
	args := m.Called()
	return args.Get(0).(fulfillment.Mode)
}

// MockExternalOrderRepository is a mock implementation of fulfillment.ExternalOrderRepository
type MockExternalOrderRepository struct {
	mock.Mock
}

func (m *MockExternalOrderRepository) UpsertExternalOrder(ctx context.Context, order *fulfillment.ExternalOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockExternalOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*fulfillment.ExternalOrder, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.ExternalOrder), args.Error(1)
}

func (m *MockExternalOrderRepository) Save(ctx context.Context, order *fulfillment.ExternalOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// memoryLocalOrders keeps local orders and their history in memory. Like the
// database repository it hands out copies, so callers must Save to persist.
type memoryLocalOrders struct {
	mu      sync.Mutex
	orders  []fulfillment.LocalOrder
	history map[uuid.UUID][]fulfillment.StatusHistoryEntry
	saves   int
	findErr error
	saveErr error
	// beforeSave runs once, under the lock, ahead of the next version check
	beforeSave func(r *memoryLocalOrders)
}

func newMemoryLocalOrders(orders ...*fulfillment.LocalOrder) *memoryLocalOrders {
	repo := &memoryLocalOrders{history: make(map[uuid.UUID][]fulfillment.StatusHistoryEntry)}
	for _, o := range orders {
		repo.orders = append(repo.orders, *o)
	}
	return repo
}

func (r *memoryLocalOrders) FindByID(_ context.Context, tenantID, id uuid.UUID) (*fulfillment.LocalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id && r.orders[i].TenantID == tenantID {
			o := r.orders[i]
			return &o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryLocalOrders) FindByReference(_ context.Context, ref string) ([]*fulfillment.LocalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}

	var out []*fulfillment.LocalOrder
	seen := make(map[uuid.UUID]bool)
	add := func(match func(o *fulfillment.LocalOrder) bool) {
		for i := range r.orders {
			if match(&r.orders[i]) && !seen[r.orders[i].ID] {
				seen[r.orders[i].ID] = true
				o := r.orders[i]
				out = append(out, &o)
			}
		}
	}
	add(func(o *fulfillment.LocalOrder) bool { return o.ID.String() == ref })
	add(func(o *fulfillment.LocalOrder) bool { return o.OrderNumber == ref })
	add(func(o *fulfillment.LocalOrder) bool { return o.ExternalRef == ref })
	return out, nil
}

func (r *memoryLocalOrders) FindWithExternalRef(_ context.Context, tenantID uuid.UUID, limit int) ([]fulfillment.LocalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []fulfillment.LocalOrder
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.ExternalRef != "" && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memoryLocalOrders) Save(_ context.Context, order *fulfillment.LocalOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if hook := r.beforeSave; hook != nil {
		r.beforeSave = nil
		hook(r)
	}

	for i := range r.orders {
		if r.orders[i].ID != order.ID {
			continue
		}
		if r.orders[i].Version != order.Version {
			return shared.ErrConcurrentModification
		}
		r.saves++
		r.history[order.ID] = append(r.history[order.ID], order.PendingHistory()...)
		order.ClearPendingHistory()
		order.IncrementVersion()
		r.orders[i] = *order
		return nil
	}
	r.saves++
	r.history[order.ID] = append(r.history[order.ID], order.PendingHistory()...)
	order.ClearPendingHistory()
	r.orders = append(r.orders, *order)
	return nil
}

// deliverStored marks the stored copy delivered the way a concurrent worker would
func (r *memoryLocalOrders) deliverStored(id uuid.UUID, at time.Time) {
	for i := range r.orders {
		if r.orders[i].ID == id && r.orders[i].MarkDelivered(at) {
			r.history[id] = append(r.history[id], r.orders[i].PendingHistory()...)
			r.orders[i].ClearPendingHistory()
			r.orders[i].IncrementVersion()
		}
	}
}

func (r *memoryLocalOrders) History(_ context.Context, orderID uuid.UUID) ([]fulfillment.StatusHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fulfillment.StatusHistoryEntry(nil), r.history[orderID]...), nil
}

// stored returns the persisted copy of an order
func (r *memoryLocalOrders) stored(id uuid.UUID) fulfillment.LocalOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o
		}
	}
	return fulfillment.LocalOrder{}
}

// memoryDedup is a minimal shared.IdempotencyStore
type memoryDedup struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{keys: make(map[string]bool)}
}

func (d *memoryDedup) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func (d *memoryDedup) IsProcessed(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	return d.keys[key], nil
}

func (d *memoryDedup) Close() error { return nil }

func newLocalOrder(number, externalRef string) *fulfillment.LocalOrder {
	order, err := fulfillment.NewLocalOrder(uuid.New(), number,
		decimal.NewFromInt(200), decimal.NewFromInt(25), decimal.Zero, decimal.NewFromInt(120))
	if err != nil {
		panic(err)
	}
	order.ExternalRef = externalRef
	return order
}

// steppingClock returns a later time on every call
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

var (
	_ fulfillment.WarehouseClient         = (*MockWarehouseClient)(nil)
	_ fulfillment.ExternalOrderRepository = (*MockExternalOrderRepository)(nil)
	_ fulfillment.LocalOrderRepository    = (*memoryLocalOrders)(nil)
	_ shared.IdempotencyStore             = (*memoryDedup)(nil)
)
