package fulfillment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codops/backend/internal/domain/shared"
)

// LocalOrder is the tenant-owned COD sales record.
// The warehouse never owns it; it is only cross-referenced through ExternalRef.
type LocalOrder struct {
	shared.TenantEntity
	OrderNumber    string
	ExternalRef    string
	CustomerName   string
	Country        string
	Subtotal       decimal.Decimal
	ShippingFee    decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal // Subtotal + ShippingFee - Discount
	Cost           decimal.Decimal
	Profit         decimal.Decimal // Total - Cost
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	TrackingCode   string
	Carrier        string
	ShippedAt      *time.Time
	DeliveredAt    *time.Time

	pendingHistory []StatusHistoryEntry
}

// NewLocalOrder creates a pending, unpaid order and derives total and profit
func NewLocalOrder(tenantID uuid.UUID, orderNumber string, subtotal, shippingFee, discount, cost decimal.Decimal) (*LocalOrder, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, ErrOrderNumberRequired
	}
	for _, amount := range []decimal.Decimal{subtotal, shippingFee, discount, cost} {
		if amount.IsNegative() {
			return nil, ErrNegativeAmount
		}
	}

	order := &LocalOrder{
		TenantEntity:   shared.NewTenantEntity(tenantID),
		OrderNumber:    orderNumber,
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		Discount:       discount,
		Cost:           cost,
		Status:         OrderStatusPending,
		PaymentStatus:  PaymentStatusPending,
		DeliveryStatus: DeliveryStatusPending,
	}
	order.recalculate()
	return order, nil
}

func (o *LocalOrder) recalculate() {
	o.Total = o.Subtotal.Add(o.ShippingFee).Sub(o.Discount)
	o.Profit = o.Total.Sub(o.Cost)
}

// ApplyTracking copies tracking data from the warehouse. Nothing is copied
// without a tracking code. Status is never touched.
func (o *LocalOrder) ApplyTracking(trackingCode, carrier string) bool {
	if trackingCode == "" {
		return false
	}
	changed := false
	if o.TrackingCode != trackingCode {
		o.TrackingCode = trackingCode
		changed = true
	}
	if carrier != "" && o.Carrier != carrier {
		o.Carrier = carrier
		changed = true
	}
	return changed
}

// MarkShipped moves the order to SHIPPED / IN_TRANSIT and appends one history entry.
// Redelivered shipped events only refresh tracking data.
func (o *LocalOrder) MarkShipped(trackingCode, carrier string, now time.Time) bool {
	changed := o.ApplyTracking(trackingCode, carrier)
	if o.Status.IsShippedOrLater() {
		if changed {
			o.Touch(now)
		}
		return changed
	}

	from := o.Status
	o.Status = OrderStatusShipped
	o.DeliveryStatus = DeliveryStatusInTransit
	if o.ShippedAt == nil {
		o.ShippedAt = &now
	}
	o.pendingHistory = append(o.pendingHistory,
		newStatusHistoryEntry(o, from, OrderStatusShipped, shippedNote(o.Carrier, o.TrackingCode), now))
	o.Touch(now)
	return true
}

// MarkDelivered moves the order to DELIVERED and, since cash is collected at the
// door, marks it PAID. Once delivered the order is never touched again, so a
// redelivered event cannot restamp DeliveredAt or undo a later refund.
func (o *LocalOrder) MarkDelivered(now time.Time) bool {
	if o.Status == OrderStatusDelivered {
		return false
	}

	from := o.Status
	o.Status = OrderStatusDelivered
	o.DeliveryStatus = DeliveryStatusDelivered
	o.PaymentStatus = PaymentStatusPaid
	if o.DeliveredAt == nil {
		o.DeliveredAt = &now
	}
	o.pendingHistory = append(o.pendingHistory,
		newStatusHistoryEntry(o, from, OrderStatusDelivered, "Delivered by warehouse, COD payment collected", now))
	o.Touch(now)
	return true
}

// PendingHistory returns history entries not yet persisted
func (o *LocalOrder) PendingHistory() []StatusHistoryEntry {
	return o.pendingHistory
}

// ClearPendingHistory is called by the repository once entries are stored
func (o *LocalOrder) ClearPendingHistory() {
	o.pendingHistory = nil
}

func shippedNote(carrier, trackingCode string) string {
	if carrier == "" {
		carrier = "unknown carrier"
	}
	if trackingCode == "" {
		return fmt.Sprintf("Shipped via %s", carrier)
	}
	return fmt.Sprintf("Shipped via %s (tracking %s)", carrier, trackingCode)
}
