package warehouse

import (
	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/infrastructure/config"
)

// NewClient selects the warehouse backend once at startup. Without an API URL
// and token the demo backend is used.
func NewClient(cfg config.WarehouseConfig, logger *zap.Logger) (fulfillment.WarehouseClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.HasCredentials() {
		logger.Warn("Warehouse API credentials not configured, running in demo mode")
		return NewDemoClient(WithDemoWebhookSecret(cfg.WebhookSecret)), nil
	}

	client, err := NewHTTPClient(Config{
		BaseURL:       cfg.APIURL,
		APIToken:      cfg.APIToken,
		WebhookSecret: cfg.WebhookSecret,
		Timeout:       cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Warehouse client configured", zap.String("base_url", client.config.BaseURL))
	return client, nil
}
