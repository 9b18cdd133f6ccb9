package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// HTTPClient talks to the real warehouse REST API
type HTTPClient struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPClient validates cfg and creates the client
func NewHTTPClient(cfg Config, logger *zap.Logger) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("warehouse"),
		now:        time.Now,
	}, nil
}

// Mode implements fulfillment.WarehouseClient
func (c *HTTPClient) Mode() fulfillment.Mode {
	return fulfillment.ModeProduction
}

// GetOrders implements fulfillment.WarehouseClient
func (c *HTTPClient) GetOrders(ctx context.Context, filter fulfillment.OrderFilter) (*fulfillment.OrderPage, error) {
	filter = filter.Normalize()

	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("limit", strconv.Itoa(filter.Limit))
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Country != "" {
		query.Set("country", filter.Country)
	}
	if filter.Since != nil {
		query.Set("updated_since", filter.Since.UTC().Format(time.RFC3339))
	}

	body, err := c.doRequest(ctx, "/orders", query)
	if err != nil {
		return nil, err
	}

	var resp orderListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrWarehouseInvalidResponse, err)
	}

	page := &fulfillment.OrderPage{
		Orders: make([]fulfillment.ExternalOrder, 0, len(resp.Data)),
		Total:  resp.Total,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	for i := range resp.Data {
		if resp.Data[i].ID == "" {
			c.logger.Warn("Skipping warehouse order without id", zap.String("reference", resp.Data[i].Reference))
			continue
		}
		page.Orders = append(page.Orders, resp.Data[i].toDomain())
	}
	return page, nil
}

// SyncOrders implements fulfillment.WarehouseClient
func (c *HTTPClient) SyncOrders(ctx context.Context, since *time.Time, sink fulfillment.OrderSink) (*fulfillment.SyncResult, error) {
	return syncOrders(ctx, c, since, sink, c.now)
}

// TestConnection implements fulfillment.WarehouseClient
func (c *HTTPClient) TestConnection(ctx context.Context) fulfillment.ConnectionCheck {
	body, err := c.doRequest(ctx, "/ping", nil)
	if err != nil {
		c.logger.Warn("Warehouse connection check failed", zap.Error(err))
		return fulfillment.ConnectionCheck{Connected: false, Message: err.Error()}
	}

	var resp pingResponse
	if err := json.Unmarshal(body, &resp); err != nil || !resp.OK {
		return fulfillment.ConnectionCheck{Connected: false, Message: "unexpected ping response"}
	}

	msg := "Connected to warehouse API"
	if resp.Account != "" {
		msg += " as " + resp.Account
	}
	return fulfillment.ConnectionCheck{Connected: true, Message: msg}
}

// VerifyWebhookSignature implements fulfillment.WarehouseClient
func (c *HTTPClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return verifySignature(c.config.WebhookSecret, rawBody, signature)
}

func (c *HTTPClient) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrWarehouseUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", fulfillment.ErrWarehouseAuthFailed, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", fulfillment.ErrWarehouseRequestFailed, resp.StatusCode)
	}
	return body, nil
}

var _ fulfillment.WarehouseClient = (*HTTPClient)(nil)
