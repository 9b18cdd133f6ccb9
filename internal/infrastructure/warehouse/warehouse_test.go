package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/infrastructure/config"
)

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid config",
			config: Config{BaseURL: "https://wms.example.com/api", APIToken: "token"},
		},
		{
			name:    "missing base url",
			config:  Config{APIToken: "token"},
			wantErr: ErrConfigMissingBaseURL,
		},
		{
			name:    "missing token",
			config:  Config{BaseURL: "https://wms.example.com/api"},
			wantErr: ErrConfigMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := Config{BaseURL: " https://wms.example.com/api/ ", APIToken: "token"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://wms.example.com/api", cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"order.shipped","data":{"orderId":"WH-1"}}`)
	valid := Sign("secret", body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{"valid", "secret", body, valid, true},
		{"valid with prefix", "secret", body, SignaturePrefix + valid, true},
		{"wrong secret", "other", body, valid, false},
		{"tampered body", "secret", []byte(`{"event":"order.delivered"}`), valid, false},
		{"empty signature", "secret", body, "", false},
		{"empty secret", "", body, valid, false},
		{"empty body", "secret", nil, valid, false},
		{"non hex", "secret", body, "zz" + valid[2:], false},
		{"short", "secret", body, valid[:10], false},
		{"too long", "secret", body, valid + "00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verifySignature(tt.secret, tt.body, tt.signature))
		})
	}
}

// ---------------------------------------------------------------------------
// HTTP client
// ---------------------------------------------------------------------------

func newTestHTTPClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(Config{
		BaseURL:       server.URL,
		APIToken:      "test-token",
		WebhookSecret: "secret",
		Timeout:       5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return client
}

func makeAPIOrders(from, n int) []apiOrder {
	orders := make([]apiOrder, 0, n)
	for i := from; i < from+n; i++ {
		orders = append(orders, apiOrder{
			ID:        fmt.Sprintf("WH-%d", i),
			Reference: fmt.Sprintf("COD-%d", i),
			Status:    "in_transit",
			CODAmount: decimal.NewFromInt(100),
			UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return orders
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClient_GetOrders(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	client := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "SHIPPED", q.Get("status"))
		assert.Equal(t, "SA", q.Get("country"))
		assert.Equal(t, "2024-03-01T12:00:00Z", q.Get("updated_since"))

		orders := makeAPIOrders(1, 2)
		orders[1].StatusLabel = "On the way"
		orders[1].CarrierName = "Aramex"
		orders = append(orders, apiOrder{Reference: "no-id"})
		writeJSON(w, orderListResponse{Data: orders, Total: 202, Page: 2, Limit: 100})
	})

	page, err := client.GetOrders(context.Background(), fulfillment.OrderFilter{
		Page:    2,
		Limit:   500,
		Status:  "SHIPPED",
		Country: "SA",
		Since:   &since,
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2, "orders without id are skipped")
	assert.Equal(t, 202, page.Total)
	assert.True(t, page.HasMore())

	assert.Equal(t, "WH-1", page.Orders[0].ExternalID)
	assert.Equal(t, fulfillment.ExternalStatusShipped, page.Orders[0].Status)
	assert.Equal(t, "Shipped", page.Orders[0].StatusLabel)
	assert.Equal(t, "On the way", page.Orders[1].StatusLabel)
	assert.Equal(t, "Aramex", page.Orders[1].Carrier)
}

func TestHTTPClient_GetOrders_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: fulfillment.ErrWarehouseAuthFailed,
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantErr: fulfillment.ErrWarehouseAuthFailed,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: fulfillment.ErrWarehouseRequestFailed,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>maintenance</html>"))
			},
			wantErr: fulfillment.ErrWarehouseInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestHTTPClient(t, tt.handler)
			_, err := client.GetOrders(context.Background(), fulfillment.OrderFilter{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewHTTPClient(Config{BaseURL: url, APIToken: "token", Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = client.GetOrders(context.Background(), fulfillment.OrderFilter{})
	assert.ErrorIs(t, err, fulfillment.ErrWarehouseUnavailable)

	check := client.TestConnection(context.Background())
	assert.False(t, check.Connected)
	assert.NotEmpty(t, check.Message)
}

func TestHTTPClient_TestConnection(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		client := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ping", r.URL.Path)
			writeJSON(w, pingResponse{OK: true, Account: "acme"})
		})
		check := client.TestConnection(context.Background())
		assert.True(t, check.Connected)
		assert.Contains(t, check.Message, "acme")
	})

	t.Run("rejected token", func(t *testing.T) {
		client := newTestHTTPClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		check := client.TestConnection(context.Background())
		assert.False(t, check.Connected)
		assert.Contains(t, check.Message, "authentication")
	})
}

func TestHTTPClient_VerifyWebhookSignature(t *testing.T) {
	client := newTestHTTPClient(t, func(http.ResponseWriter, *http.Request) {})
	body := []byte(`{"event":"order.updated"}`)

	assert.True(t, client.VerifyWebhookSignature(body, Sign("secret", body)))
	assert.False(t, client.VerifyWebhookSignature(body, Sign("wrong", body)))
	assert.Equal(t, fulfillment.ModeProduction, client.Mode())
}

// ---------------------------------------------------------------------------
// Sync
// ---------------------------------------------------------------------------

// recordingSink stores orders and fails for the configured external ids
type recordingSink struct {
	mu     sync.Mutex
	fail   map[string]bool
	stored []fulfillment.ExternalOrder
}

func (s *recordingSink) UpsertExternalOrder(_ context.Context, order *fulfillment.ExternalOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[order.ExternalID] {
		return errors.New("constraint violation")
	}
	s.stored = append(s.stored, *order)
	return nil
}

func TestHTTPClient_SyncOrders_PartialFailures(t *testing.T) {
	client := newTestHTTPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, orderListResponse{Data: makeAPIOrders(1, 10), Total: 10, Page: 1, Limit: 100})
	})
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	sink := &recordingSink{fail: map[string]bool{"WH-2": true, "WH-5": true, "WH-9": true}}
	result, err := client.SyncOrders(context.Background(), nil, sink)
	require.NoError(t, err)

	assert.Equal(t, 7, result.Synced)
	assert.Equal(t, 3, result.Errors)
	assert.Equal(t, fulfillment.SyncStatusPartial, result.Status)
	assert.Equal(t, fixed, result.LastSyncAt)
	require.Len(t, result.Failures, 3)
	assert.Equal(t, "WH-2", result.Failures[0].ExternalID)

	require.Len(t, sink.stored, 7)
	require.NotNil(t, sink.stored[0].LastSyncAt)
	assert.Equal(t, fixed, *sink.stored[0].LastSyncAt)
}

func TestHTTPClient_SyncOrders_WalksPages(t *testing.T) {
	var pages []string
	client := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			writeJSON(w, orderListResponse{Data: makeAPIOrders(1, 100), Total: 150})
		default:
			writeJSON(w, orderListResponse{Data: makeAPIOrders(101, 50), Total: 150})
		}
	})

	sink := &recordingSink{}
	result, err := client.SyncOrders(context.Background(), nil, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Equal(t, 150, result.Synced)
	assert.Equal(t, fulfillment.SyncStatusSuccess, result.Status)
}

func TestHTTPClient_SyncOrders_FirstPageFails(t *testing.T) {
	client := newTestHTTPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result, err := client.SyncOrders(context.Background(), nil, &recordingSink{})
	assert.ErrorIs(t, err, fulfillment.ErrWarehouseRequestFailed)
	assert.Nil(t, result)
}

func TestHTTPClient_SyncOrders_LaterPageFails(t *testing.T) {
	client := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, orderListResponse{Data: makeAPIOrders(1, 100), Total: 300})
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	result, err := client.SyncOrders(context.Background(), nil, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Synced)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, fulfillment.SyncStatusPartial, result.Status)
}

func TestHTTPClient_SyncOrders_AllFail(t *testing.T) {
	client := newTestHTTPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, orderListResponse{Data: makeAPIOrders(1, 2), Total: 2})
	})

	sink := &recordingSink{fail: map[string]bool{"WH-1": true, "WH-2": true}}
	result, err := client.SyncOrders(context.Background(), nil, sink)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.SyncStatusFailed, result.Status)
}

// ---------------------------------------------------------------------------
// Demo client
// ---------------------------------------------------------------------------

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestDemoClient_GetOrders(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	demo := NewDemoClient(WithDemoClock(clock.Now), WithDemoStep(0))
	ctx := context.Background()

	all, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 24, all.Total)
	assert.Len(t, all.Orders, 24)
	for i := 1; i < len(all.Orders); i++ {
		assert.False(t, all.Orders[i].UpdatedAt.After(all.Orders[i-1].UpdatedAt), "newest first")
	}

	t.Run("paging", func(t *testing.T) {
		page, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Page: 3, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, page.Orders, 4)
		assert.False(t, page.HasMore())

		beyond, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Page: 9, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, beyond.Orders)
	})

	t.Run("status filter accepts raw codes", func(t *testing.T) {
		page, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Status: "in_transit"})
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		for _, o := range page.Orders {
			assert.Equal(t, fulfillment.ExternalStatusShipped, o.Status)
			assert.NotEmpty(t, o.TrackingCode)
		}
	})

	t.Run("country filter", func(t *testing.T) {
		page, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Country: "ae"})
		require.NoError(t, err)
		assert.Equal(t, 6, page.Total)
	})

	t.Run("since filter", func(t *testing.T) {
		since := clock.Now().Add(-3 * time.Hour)
		page, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Since: &since})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := demo.GetOrders(cancelled, fulfillment.OrderFilter{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDemoClient_AdvancesOrders(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	demo := NewDemoClient(WithDemoClock(clock.Now), WithDemoStep(time.Minute))
	ctx := context.Background()

	start := clock.Now()
	none, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Since: &start})
	require.NoError(t, err)
	assert.Zero(t, none.Total)

	clock.Advance(2 * time.Minute)
	changed, err := demo.GetOrders(ctx, fulfillment.OrderFilter{Since: &start})
	require.NoError(t, err)
	require.Equal(t, 2, changed.Total)
	for _, o := range changed.Orders {
		assert.Equal(t, clock.Now(), o.UpdatedAt)
		assert.False(t, o.Status == fulfillment.ExternalStatusPending)
	}
}

func TestDemoClient_SyncAndConnection(t *testing.T) {
	demo := NewDemoClient(WithDemoStep(0), WithDemoWebhookSecret("demo-secret"))
	ctx := context.Background()

	sink := &recordingSink{}
	result, err := demo.SyncOrders(ctx, nil, sink)
	require.NoError(t, err)
	assert.Equal(t, 24, result.Synced)
	assert.Equal(t, fulfillment.SyncStatusSuccess, result.Status)

	check := demo.TestConnection(ctx)
	assert.True(t, check.Connected)
	assert.Contains(t, check.Message, "Demo")
	assert.Equal(t, fulfillment.ModeDemo, demo.Mode())

	body := []byte(`{"event":"order.created"}`)
	assert.True(t, demo.VerifyWebhookSignature(body, Sign("demo-secret", body)))
	assert.False(t, NewDemoClient().VerifyWebhookSignature(body, Sign("", body)))
}

// ---------------------------------------------------------------------------
// Factory
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	t.Run("demo without credentials", func(t *testing.T) {
		client, err := NewClient(config.WarehouseConfig{APIURL: "https://wms.example.com"}, nil)
		require.NoError(t, err)
		assert.Equal(t, fulfillment.ModeDemo, client.Mode())
	})

	t.Run("http with credentials", func(t *testing.T) {
		client, err := NewClient(config.WarehouseConfig{
			APIURL:   "https://wms.example.com/api/",
			APIToken: "token",
			Timeout:  10 * time.Second,
		}, nil)
		require.NoError(t, err)
		require.IsType(t, &HTTPClient{}, client)
		assert.Equal(t, fulfillment.ModeProduction, client.Mode())
		assert.Equal(t, "https://wms.example.com/api", client.(*HTTPClient).config.BaseURL)
	})
}
