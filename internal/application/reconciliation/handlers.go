package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
)

// maxSaveAttempts bounds reload-and-reapply rounds after a version conflict
const maxSaveAttempts = 3

// eventHandler applies one warehouse notification to local state
type eventHandler func(ctx context.Context, data fulfillment.WebhookOrderData) error

// Reconciler applies warehouse notifications to local orders and the
// warehouse order mirror. Redelivered notifications are no-ops.
type Reconciler struct {
	localOrders    fulfillment.LocalOrderRepository
	externalOrders fulfillment.ExternalOrderRepository
	logger         *zap.Logger
	now            func() time.Time
}

// NewReconciler creates a Reconciler
func NewReconciler(localOrders fulfillment.LocalOrderRepository, externalOrders fulfillment.ExternalOrderRepository, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		localOrders:    localOrders,
		externalOrders: externalOrders,
		logger:         logger,
		now:            time.Now,
	}
}

// handlers returns the dispatch table, one entry per dispatchable event kind
func (r *Reconciler) handlers() map[fulfillment.EventKind]eventHandler {
	return map[fulfillment.EventKind]eventHandler{
		fulfillment.EventOrderCreated:       r.HandleOrderUpdate,
		fulfillment.EventOrderUpdated:       r.HandleOrderUpdate,
		fulfillment.EventOrderStatusChanged: r.HandleOrderUpdate,
		fulfillment.EventOrderShipped:       r.HandleOrderShipped,
		fulfillment.EventOrderDelivered:     r.HandleOrderDelivered,
	}
}

// HandleOrderUpdate refreshes the warehouse order mirror and copies new
// tracking data onto the matching local order. Local status is never changed.
// Unknown warehouse orders are left for the periodic sync to create.
func (r *Reconciler) HandleOrderUpdate(ctx context.Context, data fulfillment.WebhookOrderData) error {
	now := r.now()

	mirror, err := r.externalOrders.FindByExternalID(ctx, data.OrderID)
	switch {
	case err == nil:
		mirror.ApplyStatusUpdate(data.StatusUpdate(), now)
		if err := r.externalOrders.Save(ctx, mirror); err != nil {
			return fmt.Errorf("failed to save warehouse order %s: %w", data.OrderID, err)
		}
	case errors.Is(err, shared.ErrNotFound):
		r.logger.Debug("Warehouse order not mirrored yet, waiting for sync",
			zap.String("warehouse_order_id", data.OrderID))
	default:
		return fmt.Errorf("failed to load warehouse order %s: %w", data.OrderID, err)
	}

	if data.ExternalRef == "" || data.TrackingCode == "" {
		return nil
	}

	order, changed, err := r.updateLocalOrder(ctx, data.ExternalRef, func(o *fulfillment.LocalOrder) bool {
		if !o.ApplyTracking(data.TrackingCode, data.CarrierName) {
			return false
		}
		o.Touch(now)
		return true
	})
	if err != nil || !changed {
		return err
	}

	r.logger.Info("Tracking updated from warehouse",
		zap.String("order_id", order.ID.String()),
		zap.String("tracking_code", order.TrackingCode))
	return nil
}

// HandleOrderShipped marks the matching local order shipped
func (r *Reconciler) HandleOrderShipped(ctx context.Context, data fulfillment.WebhookOrderData) error {
	if !r.hasReference(fulfillment.EventOrderShipped, data) {
		return nil
	}

	order, changed, err := r.updateLocalOrder(ctx, data.ExternalRef, func(o *fulfillment.LocalOrder) bool {
		return o.MarkShipped(data.TrackingCode, data.CarrierName, r.now())
	})
	if err != nil || order == nil {
		return err
	}
	if !changed {
		r.logger.Debug("Order already shipped", zap.String("order_id", order.ID.String()))
		return nil
	}

	r.logger.Info("Order marked shipped by warehouse",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("carrier", order.Carrier))
	return nil
}

// HandleOrderDelivered marks the matching local order delivered and paid
func (r *Reconciler) HandleOrderDelivered(ctx context.Context, data fulfillment.WebhookOrderData) error {
	if !r.hasReference(fulfillment.EventOrderDelivered, data) {
		return nil
	}

	order, changed, err := r.updateLocalOrder(ctx, data.ExternalRef, func(o *fulfillment.LocalOrder) bool {
		return o.MarkDelivered(r.now())
	})
	if err != nil || order == nil {
		return err
	}
	if !changed {
		r.logger.Debug("Order already delivered", zap.String("order_id", order.ID.String()))
		return nil
	}

	r.logger.Info("Order marked delivered by warehouse",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber))
	return nil
}

// updateLocalOrder loads the order matching ref, applies mutate and saves it.
// When a concurrent delivery saved the order first, the fresh row is loaded and
// mutate runs again, so a transition that already happened becomes a no-op.
// A nil order means nothing matched.
func (r *Reconciler) updateLocalOrder(ctx context.Context, ref string, mutate func(*fulfillment.LocalOrder) bool) (*fulfillment.LocalOrder, bool, error) {
	for attempt := 1; ; attempt++ {
		order, err := r.matchLocalOrder(ctx, ref)
		if err != nil || order == nil {
			return nil, false, err
		}
		if !mutate(order) {
			return order, false, nil
		}

		err = r.localOrders.Save(ctx, order)
		switch {
		case err == nil:
			return order, true, nil
		case errors.Is(err, shared.ErrConcurrentModification) && attempt < maxSaveAttempts:
			r.logger.Debug("Order changed concurrently, reapplying",
				zap.String("order_id", order.ID.String()),
				zap.Int("attempt", attempt))
		default:
			return nil, false, fmt.Errorf("failed to save order %s: %w", order.OrderNumber, err)
		}
	}
}

func (r *Reconciler) hasReference(kind fulfillment.EventKind, data fulfillment.WebhookOrderData) bool {
	if data.ExternalRef != "" {
		return true
	}
	r.logger.Warn("Warehouse event without external reference, skipping",
		zap.String("event", kind.String()),
		zap.String("warehouse_order_id", data.OrderID))
	return false
}

// matchLocalOrder resolves a warehouse reference to a local order. A nil order
// with a nil error means nothing matched.
func (r *Reconciler) matchLocalOrder(ctx context.Context, ref string) (*fulfillment.LocalOrder, error) {
	candidates, err := r.localOrders.FindByReference(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to match reference %q: %w", ref, err)
	}
	if len(candidates) == 0 {
		r.logger.Debug("No local order matches warehouse reference", zap.String("reference", ref))
		return nil, nil
	}
	if len(candidates) > 1 {
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID.String())
		}
		r.logger.Warn("ambiguous warehouse reference",
			zap.String("reference", ref),
			zap.Strings("candidate_ids", ids),
			zap.String("chosen_id", ids[0]))
	}
	return candidates[0], nil
}
