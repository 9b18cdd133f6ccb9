package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/infrastructure/telemetry"
)

const (
	// maxComparisonExternal caps how many warehouse orders a comparison loads
	maxComparisonExternal = 500
	// maxComparisonLocal caps how many local orders a comparison loads
	maxComparisonLocal = 1000
)

// SyncService serves the warehouse dashboard: listing, pull syncs, connection
// status and local/warehouse comparison.
type SyncService struct {
	client         fulfillment.WarehouseClient
	localOrders    fulfillment.LocalOrderRepository
	externalOrders fulfillment.ExternalOrderRepository
	metrics        *telemetry.ReconciliationMetrics
	logger         *zap.Logger
	now            func() time.Time

	mu         sync.RWMutex
	lastSyncAt *time.Time
}

// SyncServiceConfig contains configuration for SyncService
type SyncServiceConfig struct {
	Client         fulfillment.WarehouseClient
	LocalOrders    fulfillment.LocalOrderRepository
	ExternalOrders fulfillment.ExternalOrderRepository
	Metrics        *telemetry.ReconciliationMetrics
	Logger         *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		client:         cfg.Client,
		localOrders:    cfg.LocalOrders,
		externalOrders: cfg.ExternalOrders,
		metrics:        cfg.Metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// OrderList is a page of warehouse orders plus the time of the last sync
type OrderList struct {
	Orders     []fulfillment.ExternalOrder
	Total      int
	Page       int
	Limit      int
	LastSyncAt *time.Time
}

// ConnectionStatus reports warehouse reachability for the dashboard
type ConnectionStatus struct {
	Connected  bool             `json:"connected"`
	Message    string           `json:"message"`
	Mode       fulfillment.Mode `json:"mode"`
	LastSyncAt *time.Time       `json:"lastSyncAt"`
}

// ListOrders returns one page of warehouse orders
func (s *SyncService) ListOrders(ctx context.Context, filter fulfillment.OrderFilter) (*OrderList, error) {
	page, err := s.client.GetOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderList{
		Orders:     page.Orders,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		LastSyncAt: s.LastSyncAt(),
	}, nil
}

// Sync pulls every warehouse order modified since the given time into the
// local mirror. A nil since pulls everything.
func (s *SyncService) Sync(ctx context.Context, since *time.Time) (*fulfillment.SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "warehouse_sync", "sync",
		telemetry.SpanAttrWarehouse, string(s.client.Mode()))
	defer span.End()

	started := s.now()
	result, err := s.client.SyncOrders(ctx, since, s.externalOrders)
	if err != nil {
		s.logger.Error("Warehouse sync failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("warehouse sync failed: %w", err)
	}

	s.mu.Lock()
	at := result.LastSyncAt
	s.lastSyncAt = &at
	s.mu.Unlock()

	s.metrics.RecordSync(ctx, result.Synced, result.Errors, s.now().Sub(started))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSyncedCount, result.Synced,
		telemetry.SpanAttrErrorCount, result.Errors,
	)

	fields := []zap.Field{
		zap.String("status", string(result.Status)),
		zap.Int("synced", result.Synced),
		zap.Int("errors", result.Errors),
	}
	if result.Errors > 0 {
		s.logger.Warn("Warehouse sync finished with errors", fields...)
	} else {
		s.logger.Info("Warehouse sync finished", fields...)
	}
	return result, nil
}

// LastSyncAt returns when the last sync finished, or nil if none ran
func (s *SyncService) LastSyncAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSyncAt == nil {
		return nil
	}
	at := *s.lastSyncAt
	return &at
}

// Status probes the warehouse connection
func (s *SyncService) Status(ctx context.Context) ConnectionStatus {
	check := s.client.TestConnection(ctx)
	return ConnectionStatus{
		Connected:  check.Connected,
		Message:    check.Message,
		Mode:       s.client.Mode(),
		LastSyncAt: s.LastSyncAt(),
	}
}

// Compare joins a tenant's referenced local orders against the most recently
// updated warehouse orders
func (s *SyncService) Compare(ctx context.Context, tenantID uuid.UUID) (*fulfillment.ComparisonReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "warehouse_sync", "compare")
	defer span.End()

	local, err := s.localOrders.FindWithExternalRef(ctx, tenantID, maxComparisonLocal)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load local orders: %w", err)
	}

	external := make([]fulfillment.ExternalOrder, 0, fulfillment.MaxOrderPageSize)
	filter := fulfillment.OrderFilter{Page: 1, Limit: fulfillment.MaxOrderPageSize}
	for len(external) < maxComparisonExternal {
		page, err := s.client.GetOrders(ctx, filter)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load warehouse orders: %w", err)
		}
		external = append(external, page.Orders...)
		if len(page.Orders) == 0 || !page.HasMore() {
			break
		}
		filter.Page++
	}
	if len(external) > maxComparisonExternal {
		external = external[:maxComparisonExternal]
	}

	report := fulfillment.CompareOrders(local, external)
	return &report, nil
}
